package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAxis = errors.New("axis is missing")
	ErrEmptyAxis   = errors.New("axis has no values")
	ErrMalformed   = errors.New("malformed catalog")
)

// Error reports a catalog that cannot produce a test matrix.
type Error struct {
	Path string
	Axis string
	Err  error
}

func (e *Error) Error() string {
	where := "catalog"
	if e.Path != "" {
		where = fmt.Sprintf("catalog %s", e.Path)
	}
	if e.Axis != "" {
		return fmt.Sprintf("%s: axis %q: %v", where, e.Axis, e.Err)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
