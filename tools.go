//go:build tools

package maker

import (
	_ "github.com/golang/mock/mockgen"
)
