// Maker sizes, runs and simulates first-to-ahead-by-k voting.
package main

import "github.com/relab/maker/internal/cli"

func main() {
	cli.Execute()
}
