package llm

import (
	"context"
	"time"

	"github.com/abhisek/studyreport/internal/logger"
	"github.com/abhisek/studyreport/internal/store"
)

// LoggingProvider records every call in the request log and the
// structured log. Failing to record never fails the call.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *logger.Logger
}

// WithLogging wraps p. events may be nil to skip persistence.
func WithLogging(p Provider, provider string, events store.EventRepo, log *logger.Logger) Provider {
	return &LoggingProvider{
		inner:    p,
		provider: provider,
		events:   events,
		log:      logger.OrNop(log).With("service", "LLM", "provider", provider),
	}
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "purpose", data.Purpose, "latency_ms", data.LatencyMs, "error", err)
	} else {
		l.log.Debug("llm request", "purpose", data.Purpose, "model", data.Model,
			"latency_ms", data.LatencyMs, "input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.Warn("record llm request", "error", logErr)
		}
	}
	return resp, err
}
