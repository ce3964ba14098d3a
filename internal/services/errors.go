package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFormat       = errors.New("format error")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrCollaborator = errors.New("collaborator error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrCollaborator
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns a short remediation suggestion for the error's class, or an
// empty string when nothing useful can be said.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPrecondition):
		return "check the input/output directories and rerun"
	case errors.Is(err, ErrValidation):
		return "versions must look like 1.2, 1.2.3 or 1.2.3.4"
	case errors.Is(err, ErrNotFound):
		return "the announcement feed may not have caught up yet; retry later"
	case errors.Is(err, ErrCollaborator):
		return "the remote service or external tool failed; retry or run `modbase doctor`"
	default:
		return ""
	}
}

// Chain flattens the wrapped error chain into one message per layer, outermost
// first. Used for debug output.
func Chain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				out = append(out, Chain(inner)...)
			}
			return out
		}
		err = errors.Unwrap(err)
	}
	return out
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
