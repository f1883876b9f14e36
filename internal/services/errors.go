package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalService marks failures reported by a collaborator API.
	ErrExternalService = errors.New("external service error")
	// ErrConfiguration marks construction-time configuration problems;
	// these abort the run instead of being absorbed per post.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups that returned no result.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks network-level failures worth noting as such.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while
// tagging it with the provided marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the whole run rather than
// just the current post.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
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
