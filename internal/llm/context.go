package llm

import "context"

type purposeKey struct{}

// unknownPurpose labels events from calls made without WithPurpose.
const unknownPurpose = "unknown"

// WithPurpose tags ctx with what an LLM call is for ("math-gen"). The tag
// ends up in the recorded request event.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return unknownPurpose
}
