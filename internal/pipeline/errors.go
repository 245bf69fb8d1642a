package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyTopic is returned when a run is started without a topic.
var ErrEmptyTopic = errors.New("topic is required")

// ErrCancelled is returned when the caller cancels a run between stages.
// It wraps the context's error.
var ErrCancelled = errors.New("pipeline run cancelled")

// NoContentSentinel is returned as the final output of a run whose last stage produced nothing.
const NoContentSentinel = "No content generated. Please check the logs."

// StageError reports an oracle failure in one stage. The run stops there.
type StageError struct {
	Stage string
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MissingContextKeyError reports a stage input that no earlier stage or seed provides.
type MissingContextKeyError struct {
	Stage string
	Key   string
}

func (e *MissingContextKeyError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("missing context key %q", e.Key)
	}
	return fmt.Sprintf("stage %s requires context key %q which no earlier stage provides", e.Stage, e.Key)
}

// DuplicateOutputError reports two writers of the same context key.
type DuplicateOutputError struct {
	Key    string
	Stages []string
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("context key %q is written by more than one source: %v", e.Key, e.Stages)
}

// KeyExistsError is returned by Context.Set when a key has already been written.
type KeyExistsError struct {
	Key string
}

func (e *KeyExistsError) Error() string {
	return fmt.Sprintf("context key %q already set", e.Key)
}

type cancelledError struct {
	cause error
}

func (e *cancelledError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCancelled, e.cause)
}

func (e *cancelledError) Is(target error) bool {
	return target == ErrCancelled
}

func (e *cancelledError) Unwrap() error {
	return e.cause
}
