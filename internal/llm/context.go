package llm

import "context"

type purposeKey struct{}

// PurposeTopics labels topic-classification calls in the request log.
const PurposeTopics = "topic-classification"

// WithPurpose tags ctx with what an LLM call is for.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
