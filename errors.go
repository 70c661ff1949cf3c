package maker

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a caller passes parameters that violate the
// contract of a function. Use errors.Is to test for it.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
