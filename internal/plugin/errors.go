package plugin

import (
	"errors"
	"fmt"
)

// Stage names the plugin call that failed
type Stage string

const (
	StageLoad      Stage = "load"
	StageCanHandle Stage = "can_handle"
	StageHandle    Stage = "handle"
)

// Error wraps a failure raised by a plugin
type Error struct {
	Plugin string
	Stage  Stage
	Err    error
}

func (e *Error) Error() string {
	if e.Plugin == "" {
		return fmt.Sprintf("plugin %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("plugin %s: %s: %v", e.Plugin, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError is the cause recorded when a plugin panics
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

var errNilPlugin = errors.New("loader returned no plugin")
