package render

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindUnknownVariable Kind = "unknown-variable"
	KindWrite           Kind = "write"
	KindHook            Kind = "hook"
	KindOther           Kind = "other"
)

var (
	ErrUnknownVariable = errors.New("unknown template variable")
	ErrWrite           = errors.New("filesystem write failed")
	ErrHook            = errors.New("post-generation hook failed")
)

// Error is a renderer failure classified by Kind. errors.Is matches the
// sentinel for its kind.
type Error struct {
	Kind   Kind
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("render failed (%s): %v", e.Kind, e.Err)
	if s := lastLine(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnknownVariable:
		return e.Kind == KindUnknownVariable
	case ErrWrite:
		return e.Kind == KindWrite
	case ErrHook:
		return e.Kind == KindHook
	}
	return false
}

// Classify maps renderer diagnostics to a Kind.
func Classify(stderr string) Kind {
	switch {
	case strings.Contains(stderr, "UndefinedVariableInTemplate"),
		strings.Contains(stderr, "UndefinedError"),
		strings.Contains(stderr, "is undefined"):
		return KindUnknownVariable
	case strings.Contains(stderr, "FailedHookException"),
		strings.Contains(stderr, "Hook script failed"):
		return KindHook
	case strings.Contains(stderr, "PermissionError"),
		strings.Contains(stderr, "OSError"),
		strings.Contains(stderr, "No space left on device"),
		strings.Contains(stderr, "Read-only file system"):
		return KindWrite
	default:
		return KindOther
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
