package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors for common SDK error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrToolNotFound indicates the requested tool was not found in any
	// registered plugin.
	ErrToolNotFound = errors.New("tool not found")

	// ErrPluginNotFound indicates the requested plugin was not found in the registry.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error kinds categorize errors by their type.
const (
	// KindNotFound represents errors where a resource was not found.
	KindNotFound = "not_found"

	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindExecution represents errors that occur during execution.
	KindExecution = "execution"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindNetwork represents errors related to network operations.
	KindNetwork = "network"

	// KindInternal represents internal SDK errors.
	KindInternal = "internal"
)

// KitError is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of error.
//
// KitError implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &KitError{
//		Op:   "Kit.Invoke",
//		Kind: KindNotFound,
//		Err:  ErrToolNotFound,
//	}
type KitError struct {
	// Op is the operation that failed (e.g., "Kit.Invoke", "NewKit").
	Op string

	// Kind categorizes the error (e.g., KindNotFound, KindValidation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include tool methods, plugin ids, or other debugging information.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *KitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sdk: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("sdk: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("sdk: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *KitError) Unwrap() error {
	return e.Err
}

// Is implements error matching for KitError, allowing comparison based on
// the underlying error or the KitError itself.
func (e *KitError) Is(target error) bool {
	if target == nil {
		return false
	}

	// Check if target is a KitError with matching Kind
	if t, ok := target.(*KitError); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// WithContext returns a new KitError with the provided context added.
// This is useful for adding debugging information to errors.
func (e *KitError) WithContext(ctx map[string]any) *KitError {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewNotFoundError creates a new KitError with KindNotFound.
func NewNotFoundError(op string, err error) *KitError {
	return &KitError{
		Op:   op,
		Kind: KindNotFound,
		Err:  err,
	}
}

// NewValidationError creates a new KitError with KindValidation.
func NewValidationError(op string, err error) *KitError {
	return &KitError{
		Op:   op,
		Kind: KindValidation,
		Err:  err,
	}
}

// NewExecutionError creates a new KitError with KindExecution.
func NewExecutionError(op string, err error) *KitError {
	return &KitError{
		Op:   op,
		Kind: KindExecution,
		Err:  err,
	}
}

// NewConfigurationError creates a new KitError with KindConfiguration.
func NewConfigurationError(op string, err error) *KitError {
	return &KitError{
		Op:   op,
		Kind: KindConfiguration,
		Err:  err,
	}
}

// NewNetworkError creates a new KitError with KindNetwork.
func NewNetworkError(op string, err error) *KitError {
	return &KitError{
		Op:   op,
		Kind: KindNetwork,
		Err:  err,
	}
}

// NewInternalError creates a new KitError with KindInternal.
func NewInternalError(op string, err error) *KitError {
	return &KitError{
		Op:   op,
		Kind: KindInternal,
		Err:  err,
	}
}
