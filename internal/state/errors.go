package state

import (
	"errors"
	"fmt"
)

// GraphError reports a rejected graph mutation.
type GraphError struct {
	// Code identifies the rejection category.
	Code GraphErrorCode

	// Message is a human-readable description.
	Message string

	// InstanceID and Port identify the offending endpoint when relevant.
	InstanceID string
	Port       string
}

// GraphErrorCode categorizes graph mutation failures.
type GraphErrorCode string

const (
	// ErrCodeUnknownInstance indicates an endpoint names a missing instance.
	ErrCodeUnknownInstance GraphErrorCode = "UNKNOWN_INSTANCE"

	// ErrCodeUnknownPort indicates an endpoint names a port the definition
	// does not declare, or a port with the wrong direction.
	ErrCodeUnknownPort GraphErrorCode = "UNKNOWN_PORT"

	// ErrCodeTypeMismatch indicates incompatible port types.
	ErrCodeTypeMismatch GraphErrorCode = "TYPE_MISMATCH"

	// ErrCodePortOccupied indicates fan-in: the target input port already
	// has an incoming connection. Fan-in is rejected at creation time.
	ErrCodePortOccupied GraphErrorCode = "PORT_OCCUPIED"

	// ErrCodeDuplicateID indicates an id collision on insert.
	ErrCodeDuplicateID GraphErrorCode = "DUPLICATE_ID"
)

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.InstanceID != "" && e.Port != "" {
		return fmt.Sprintf("%s: %s (instance=%s, port=%s)", e.Code, e.Message, e.InstanceID, e.Port)
	}
	if e.InstanceID != "" {
		return fmt.Sprintf("%s: %s (instance=%s)", e.Code, e.Message, e.InstanceID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPortOccupied reports whether err is a fan-in rejection.
// Uses errors.As to handle wrapped errors.
func IsPortOccupied(err error) bool {
	var ge *GraphError
	return errors.As(err, &ge) && ge.Code == ErrCodePortOccupied
}

// IsTypeMismatch reports whether err is a port type incompatibility.
func IsTypeMismatch(err error) bool {
	var ge *GraphError
	return errors.As(err, &ge) && ge.Code == ErrCodeTypeMismatch
}
