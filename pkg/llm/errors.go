package llm

import (
	"context"
	"errors"
	"fmt"
)

// ExtractionFailure describes provider output that could not be turned into a
// structured value.
type ExtractionFailure struct {
	Raw    string
	Reason string
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

// ValidationError reports the first field that broke a Schema.
// Path is a JSON-path-like location such as "$.questions[1]".
type ValidationError struct {
	MissingField string
	Path         string
	Reason       string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at %s.%s: %s", e.Path, e.MissingField, e.Reason)
}

// ProviderError wraps a transport, quota or timeout failure of one provider call.
type ProviderError struct {
	Provider string
	Stage    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error in stage %q: %v", e.Provider, e.Stage, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
