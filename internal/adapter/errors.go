package adapter

import (
	"errors"
	"fmt"
)

// ScriptError reports a failure raised by the injected payload's own logic,
// as opposed to a structural navigation failure such as a detached or hidden
// frame. It is the one error class the traversal never swallows.
type ScriptError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script error: %s: %v", e.Msg, e.Err)
	}

	return fmt.Sprintf("script error: %s", e.Msg)
}

// Unwrap returns the underlying driver error, if any.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

// IsScriptError reports whether err is, or wraps, a ScriptError.
func IsScriptError(err error) bool {
	var scriptErr *ScriptError

	return errors.As(err, &scriptErr)
}
