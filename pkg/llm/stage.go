package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"
)

const (
	DefaultTimeout = 60 * time.Second
	previewChars   = 120
)

// Stage binds a response schema to the record type it decodes into and to the
// fallback record used when the provider output is unusable.
type Stage[T any] struct {
	Name     string
	Schema   Schema
	Fallback func(cause error) T
}

// Outcome is what a stage run produced. Degraded is set when Record came from
// the stage's fallback; Cause then says why.
type Outcome[T any] struct {
	Record   T
	Degraded bool
	Cause    error
}

type Runner struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

func NewRunner(provider Provider, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		provider: provider,
		timeout:  timeout,
		logger:   slog.Default().With("component", "stage_runner"),
	}
}

func (r *Runner) ProviderName() string {
	return r.provider.Name()
}

// RunStage calls the provider once and decodes its output into T.
// Unparseable, incomplete or empty output yields the stage fallback with a nil
// error. A failed provider call is returned as *ProviderError.
func RunStage[T any](ctx context.Context, r *Runner, stage Stage[T], prompt Prompt) (Outcome[T], error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	raw, err := r.provider.Generate(callCtx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		r.logger.Error("provider call failed",
			"stage", stage.Name,
			"provider", r.provider.Name(),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return Outcome[T]{}, &ProviderError{Provider: r.provider.Name(), Stage: stage.Name, Err: err}
	}

	record, cause := Decode[T](raw, stage.Schema)
	if cause != nil {
		r.logger.Warn("stage degraded to fallback",
			"stage", stage.Name,
			"provider", r.provider.Name(),
			"duration_ms", elapsed.Milliseconds(),
			"reason", cause.Error(),
			"raw_chars", utf8.RuneCountInString(raw),
			"preview", truncate(raw, previewChars),
		)
		var fallback T
		if stage.Fallback != nil {
			fallback = stage.Fallback(cause)
		}
		return Outcome[T]{Record: fallback, Degraded: true, Cause: cause}, nil
	}

	r.logger.Info("stage completed",
		"stage", stage.Name,
		"provider", r.provider.Name(),
		"duration_ms", elapsed.Milliseconds(),
		"raw_chars", utf8.RuneCountInString(raw),
		"preview", truncate(raw, previewChars),
	)
	return Outcome[T]{Record: record}, nil
}

// Decode runs raw text through Extract and Validate and fills a T from the
// validated value. Keys outside T and keys in schema.Assigned are dropped.
func Decode[T any](raw string, schema Schema) (T, error) {
	var zero T

	extracted := Extract(raw)
	if !extracted.OK() {
		return zero, extracted.Failure
	}

	if err := Validate(extracted.Value, schema); err != nil {
		return zero, err
	}

	if obj, ok := extracted.Object(); ok {
		for _, key := range schema.Assigned {
			delete(obj, key)
		}
	}

	buf, err := json.Marshal(extracted.Value)
	if err != nil {
		return zero, &ValidationError{Path: "$", Reason: err.Error()}
	}

	var record T
	if err := json.Unmarshal(buf, &record); err != nil {
		return zero, &ValidationError{Path: "$", Reason: err.Error()}
	}
	return record, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
