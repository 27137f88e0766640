// Package reason adapts a hosted language model into the narrow interface
// the documentation pipeline consumes: one prompt in, one text completion
// out. It also owns response caching and the fenced-block contract that
// structured stage responses must satisfy.
package reason

import "context"

// Service produces one text completion for one prompt. Implementations
// own their own request timeouts; retry policy belongs to the caller.
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type attemptKey struct{}

// WithAttempt annotates ctx with the 1-based attempt number of the unit
// of work issuing the next completion.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// Attempt returns the attempt number carried by ctx, or 1.
func Attempt(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok && n > 0 {
		return n
	}
	return 1
}
