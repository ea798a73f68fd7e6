package availability

import (
	"errors"
	"fmt"
)

// ShapeError reports a spreadsheet that cannot be read as an availability table
type ShapeError struct {
	Column string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("invalid availability sheet: %v", e.Err)
	}
	return fmt.Sprintf("invalid availability sheet: %v %q", e.Err, e.Column)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrEmptyInput        = errors.New("no header row")
	ErrNoDateColumns     = errors.New("no date columns")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
