package report

import (
	"errors"
	"fmt"
)

// ErrEncoding matches every EncodingError through errors.Is.
var ErrEncoding = errors.New("cell not representable in document encoding")

// EncodingError reports the first cell whose text cannot be written in the
// document's character set. Row -1 is the header row; the title is reported
// with Column -1.
type EncodingError struct {
	Row    int
	Column int
	Value  string
	Err    error
}

func (e *EncodingError) Error() string {
	switch {
	case e.Column < 0:
		return fmt.Sprintf("encode title %q: %v", e.Value, e.Err)
	case e.Row < 0:
		return fmt.Sprintf("encode header column %d %q: %v", e.Column, e.Value, e.Err)
	default:
		return fmt.Sprintf("encode row %d column %d %q: %v", e.Row, e.Column, e.Value, e.Err)
	}
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }
