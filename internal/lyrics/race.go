package lyrics

import "context"

// firstSuccess fans out every lookup concurrently and returns the first one
// that succeeds. Losing lookups are abandoned, not cancelled; they finish (or
// time out) on their own and their results are discarded. Returns false when
// every lookup fails.
func firstSuccess[T any](ctx context.Context, lookups []func(context.Context) (T, error)) (T, bool) {
	var zero T
	if len(lookups) == 0 {
		return zero, false
	}

	type outcome struct {
		value T
		err   error
	}

	// Buffered so abandoned lookups never block on send.
	results := make(chan outcome, len(lookups))
	for _, lookup := range lookups {
		go func(fn func(context.Context) (T, error)) {
			value, err := fn(ctx)
			results <- outcome{value: value, err: err}
		}(lookup)
	}

	for range lookups {
		select {
		case res := <-results:
			if res.err == nil {
				return res.value, true
			}
		case <-ctx.Done():
			return zero, false
		}
	}

	return zero, false
}
