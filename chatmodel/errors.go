package chatmodel

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Every failure returned by the runtime is marked with exactly
// one of them, use errors.Is or KindOf to classify.
var (
	// ErrModel is returned when the language model call fails or returns a malformed response.
	ErrModel = errors.New("model error")
	// ErrTool is returned when a tool is not found or its logic fails.
	ErrTool = errors.New("tool execution error")
	// ErrInvalidInput is returned when tool arguments can not be parsed or coerced.
	ErrInvalidInput = errors.New("invalid input")
	// ErrContext is returned on context shape violations.
	ErrContext = errors.New("context error")
	// ErrConfiguration is returned when an agent or a tool is misconfigured.
	ErrConfiguration = errors.New("configuration error")
	// ErrInternal is returned on unexpected invariant violations.
	ErrInternal = errors.New("internal error")
	// ErrSerialization is returned when a value can not be encoded or decoded.
	ErrSerialization = errors.New("serialization error")
)

var kinds = []error{
	ErrConfiguration,
	ErrContext,
	ErrInvalidInput,
	ErrSerialization,
	ErrTool,
	ErrModel,
	ErrInternal,
}

func newKind(kind error, format string, args ...any) error {
	err := errors.Newf(format, args...)
	err = errors.WithMessage(err, kind.Error())
	return errors.Mark(err, kind)
}

func wrapKind(kind error, cause error, format string, args ...any) error {
	if cause == nil {
		return errors.WithStack(newKind(kind, format, args...))
	}
	err := errors.Wrapf(cause, format, args...)
	err = errors.WithMessage(err, kind.Error())
	return errors.Mark(err, kind)
}

// NewModelError returns ErrModel kind
func NewModelError(format string, args ...any) error {
	return newKind(ErrModel, format, args...)
}

// WrapModelError wraps the cause with ErrModel kind
func WrapModelError(cause error, format string, args ...any) error {
	return wrapKind(ErrModel, cause, format, args...)
}

// NewToolError returns ErrTool kind
func NewToolError(format string, args ...any) error {
	return newKind(ErrTool, format, args...)
}

// WrapToolError wraps the cause with ErrTool kind
func WrapToolError(cause error, format string, args ...any) error {
	return wrapKind(ErrTool, cause, format, args...)
}

// NewInvalidInputError returns ErrInvalidInput kind
func NewInvalidInputError(format string, args ...any) error {
	return newKind(ErrInvalidInput, format, args...)
}

// WrapInvalidInputError wraps the cause with ErrInvalidInput kind
func WrapInvalidInputError(cause error, format string, args ...any) error {
	return wrapKind(ErrInvalidInput, cause, format, args...)
}

// NewContextError returns ErrContext kind
func NewContextError(format string, args ...any) error {
	return newKind(ErrContext, format, args...)
}

// WrapContextError wraps the cause with ErrContext kind
func WrapContextError(cause error, format string, args ...any) error {
	return wrapKind(ErrContext, cause, format, args...)
}

// NewConfigurationError returns ErrConfiguration kind
func NewConfigurationError(format string, args ...any) error {
	return newKind(ErrConfiguration, format, args...)
}

// WrapConfigurationError wraps the cause with ErrConfiguration kind
func WrapConfigurationError(cause error, format string, args ...any) error {
	return wrapKind(ErrConfiguration, cause, format, args...)
}

// NewInternalError returns ErrInternal kind
func NewInternalError(format string, args ...any) error {
	return newKind(ErrInternal, format, args...)
}

// WrapInternalError wraps the cause with ErrInternal kind
func WrapInternalError(cause error, format string, args ...any) error {
	return wrapKind(ErrInternal, cause, format, args...)
}

// NewSerializationError returns ErrSerialization kind
func NewSerializationError(format string, args ...any) error {
	return newKind(ErrSerialization, format, args...)
}

// WrapSerializationError wraps the cause with ErrSerialization kind
func WrapSerializationError(cause error, format string, args ...any) error {
	return wrapKind(ErrSerialization, cause, format, args...)
}

// KindOf returns the error kind the err is marked with,
// or nil if err is not produced by this package.
// Configuration and input kinds take precedence, so an argument decoding
// failure marked both as InvalidInput and Serialization reports InvalidInput.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
