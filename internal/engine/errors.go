package engine

import (
	"errors"
	"fmt"
)

// TickError represents a contained per-instance failure during a tick.
//
// None of these escape the tick: the affected instance is marked errored,
// its outputs collapse to empty, and execution continues with the next
// instance. Only genuine invariant violations propagate out of RunTick.
type TickError struct {
	// Code identifies the failure category.
	Code TickErrorCode

	// Message is a human-readable description.
	Message string

	// InstanceID identifies the affected instance.
	InstanceID string
}

// TickErrorCode categorizes tick execution failures.
type TickErrorCode string

const (
	// ErrCodeDefinitionMissing indicates an instance references a
	// definition that cannot be resolved.
	ErrCodeDefinitionMissing TickErrorCode = "DEFINITION_MISSING"

	// ErrCodeLogicRuntime indicates the behavior failed (returned an
	// error or panicked) during invocation.
	ErrCodeLogicRuntime TickErrorCode = "LOGIC_RUNTIME"
)

// Error implements the error interface.
func (e *TickError) Error() string {
	if e.InstanceID != "" {
		return fmt.Sprintf("%s: %s (instance=%s)", e.Code, e.Message, e.InstanceID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDefinitionMissing reports whether err is a missing-definition failure.
// Uses errors.As to handle wrapped errors.
func IsDefinitionMissing(err error) bool {
	var te *TickError
	return errors.As(err, &te) && te.Code == ErrCodeDefinitionMissing
}

// IsLogicError reports whether err is a behavior runtime failure.
func IsLogicError(err error) bool {
	var te *TickError
	return errors.As(err, &te) && te.Code == ErrCodeLogicRuntime
}
