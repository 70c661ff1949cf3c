package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
)

// maxLineSize bounds the length of one candidate or response.
const maxLineSize = 1 << 20

// readLines reads the non-blank lines of path, or of the command's input if path is empty.
func readLines(cmd *cobra.Command, path string) (lines []string, err error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "" {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		r = f
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// addScreenFlags adds the red-flag screening flags to fs.
func addScreenFlags(fs *pflag.FlagSet) {
	fs.Int("min-tokens", 0, "flag responses with fewer estimated tokens (0 disables)")
	fs.Int("max-tokens", 0, "flag responses with more estimated tokens (0 disables)")
	fs.Float64("chars-per-token", 4, "characters per token used to estimate the token count")
	fs.String("format", "", "required format of responses (json, code, single_line)")
	fs.StringSlice("required-fields", nil, "top-level fields that JSON responses must contain")
	fs.Bool("skip-hedging", false, "do not flag hedging language")
	fs.Bool("skip-off-topic", false, "do not flag off-topic responses")
	fs.Bool("skip-repetition", false, "do not flag repetitive responses")
	fs.Float64("repetition-threshold", 0.3, "tolerated share of repeated word trigrams")
	fs.Bool("strict", false, "discard responses with any flag, not only critical or multiple flags")
}
