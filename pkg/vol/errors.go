package vol

import (
	"emperror.dev/errors"
)

// The dispatch core reports failure through these sentinels so that
// callers can tell the failure classes apart with errors.Is. Connector
// internal errors pass through unwrapped.
var (
	// ErrInvalidArgument covers nil required pointers, empty names and
	// out of range enumeration tags. Detected before any connector
	// callback runs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateClass is returned when a connector class with the same
	// name is already registered.
	ErrDuplicateClass = errors.New("connector class already registered")

	// ErrReservedValue is returned when a registration collides with the
	// reserved built-in value range, or an unregistration targets it.
	ErrReservedValue = errors.New("connector class value reserved")

	// ErrUnknownClass is returned when a handle or name does not resolve
	// to a registered connector class.
	ErrUnknownClass = errors.New("unknown connector class")

	// ErrUnsupported is returned when the resolved connector class does
	// not implement the requested capability. Distinct from any error a
	// connector raises from inside its own implementation.
	ErrUnsupported = errors.New("operation not supported by connector")

	// ErrPluginNotFound is returned when a dynamic connector module for
	// a name can neither be looked up nor loaded.
	ErrPluginNotFound = errors.New("connector plugin not found")
)
