package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every pipeline failure matches exactly one of these with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformedDocument = errors.New("malformed document")
	ErrDependencyFailure = errors.New("dependency failure")
)

// PipelineError attaches the failing stage to an error kind and its cause
type PipelineError struct {
	Kind  error
	Stage string
	Err   error
}

// NewPipelineError wraps err as kind, raised by stage
func NewPipelineError(kind error, stage string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the cause text without the kind and stage prefix
func (e *PipelineError) Message() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}
