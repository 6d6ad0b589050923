package llm

import (
	"context"
	"errors"

	"github.com/abhisek/studyreport/internal/retry"
)

// RetryProvider retries transient provider failures with backoff.
type RetryProvider struct {
	inner Provider
	cfg   retry.Config
}

// WithRetry wraps p.
func WithRetry(p Provider, cfg retry.Config) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

// Generate retries rate limits, outages and unknown errors. A schema
// mismatch is retried once; truncation is never retried.
func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	invalidSeen := false
	err := retry.Do(ctx, r.cfg, func(err error) bool {
		var maxTok *ErrMaxTokensExceeded
		if errors.As(err, &maxTok) {
			return false
		}
		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			if invalidSeen {
				return false
			}
			invalidSeen = true
		}
		return true
	}, func(ctx context.Context) error {
		var err error
		resp, err = r.inner.Generate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
