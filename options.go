package dial

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Option configures the command processing pipeline of a Dispatcher.
// Pipeline options wrap the command effect with middleware for retry,
// timeout, and other reliability patterns.
type Option func(pipz.Chainable[*Command]) pipz.Chainable[*Command]

// buildPipeline wraps a terminal with pipeline options.
func buildPipeline(terminal pipz.Chainable[*Command], opts []Option) pipz.Chainable[*Command] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// -----------------------------------------------------------------------------
// Pipeline Options - Wrapping (With*)
// -----------------------------------------------------------------------------

// WithRetry wraps the pipeline with retry logic.
// Failed commands are retried immediately up to maxAttempts times.
// For exponential backoff between retries, use WithBackoff instead.
func WithRetry(maxAttempts int) Option {
	return func(p pipz.Chainable[*Command]) pipz.Chainable[*Command] {
		return pipz.NewRetry("retry", p, maxAttempts)
	}
}

// WithBackoff wraps the pipeline with exponential backoff retry logic.
// Failed commands are retried with increasing delays: baseDelay, 2*baseDelay, 4*baseDelay, etc.
func WithBackoff(maxAttempts int, baseDelay time.Duration) Option {
	return func(p pipz.Chainable[*Command]) pipz.Chainable[*Command] {
		return pipz.NewBackoff("backoff", p, maxAttempts, baseDelay)
	}
}

// WithTimeout wraps the pipeline with a timeout.
// If a command takes longer than the specified duration, it fails with a
// timeout error.
func WithTimeout(d time.Duration) Option {
	return func(p pipz.Chainable[*Command]) pipz.Chainable[*Command] {
		return pipz.NewTimeout("timeout", p, d)
	}
}

// WithMiddleware wraps the pipeline with a sequence of processors.
// Processors execute in order, with the command effect last.
//
// Use the Use* functions to create processors for common patterns,
// or provide custom pipz.Chainable implementations directly.
func WithMiddleware(processors ...pipz.Chainable[*Command]) Option {
	return func(p pipz.Chainable[*Command]) pipz.Chainable[*Command] {
		all := make([]pipz.Chainable[*Command], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence("middleware", all...)
	}
}

// -----------------------------------------------------------------------------
// Middleware Processors - Adapters (Use*)
// -----------------------------------------------------------------------------

// UseTransform creates a processor that transforms the command.
// Cannot fail. Use for pure transformations that always succeed.
func UseTransform(name string, fn func(context.Context, *Command) *Command) pipz.Chainable[*Command] {
	return pipz.Transform(pipz.Name(name), fn)
}

// UseApply creates a processor that can transform the command and fail.
func UseApply(name string, fn func(context.Context, *Command) (*Command, error)) pipz.Chainable[*Command] {
	return pipz.Apply(pipz.Name(name), fn)
}

// UseEffect creates a processor that performs a side effect.
// The command passes through unchanged. Use for logging, metrics, or
// notifications that should not affect the command.
func UseEffect(name string, fn func(context.Context, *Command) error) pipz.Chainable[*Command] {
	return pipz.Effect(pipz.Name(name), fn)
}
