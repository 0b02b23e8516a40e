package patch

import "fmt"

// PatchError reports an invalid patch file.
type PatchError struct {
	// Field locates the offending entry, e.g. "blocks[2].type" or
	// "connections[0].from".
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *PatchError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("patch: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("patch: %s", e.Message)
}
