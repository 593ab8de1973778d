package parser

import (
	"errors"
	"fmt"
)

// ErrBadMagic means the input is not of the format being tried. It is the
// expected outcome of format detection and not a decode failure.
var ErrBadMagic = errors.New("parser: bad magic")

// DecodeError is the single failure a whole-document decode reports.
type DecodeError struct {
	Format Format
	State  State
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode failed in state %s: %v", e.Format, e.State, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsBadMagic reports whether err means "not this format".
func IsBadMagic(err error) bool {
	return errors.Is(err, ErrBadMagic)
}
