package script

import (
	"errors"
	"fmt"
)

// Errors returned by the script engine.
var (
	// ErrEngineClosed indicates use of an engine after Close.
	ErrEngineClosed = errors.New("script engine closed")
)

// ScriptError reports a failure inside a scene script.
type ScriptError struct {
	Source string // file path, or the chunk name for inline code
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
