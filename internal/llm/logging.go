package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/worksheet/internal/store"
)

// EventRecorder persists one row per LLM request.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider is a decorator that records every LLM request as an
// event and a structured log line.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   EventRecorder
	logger   *slog.Logger
}

// WithLogging wraps a Provider with event logging. events may be nil, in
// which case only the log line is written.
func WithLogging(p Provider, providerName string, events EventRecorder, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, provider: providerName, events: events, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	attrs := []any{
		"provider", data.Provider,
		"model", data.Model,
		"purpose", purpose,
		"latency", latency,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		data.ResponseBody = rejectedContent(err)
		l.logger.WarnContext(ctx, "llm request failed", append(attrs, "error", err)...)
	} else {
		l.logger.DebugContext(ctx, "llm request", attrs...)
	}

	if l.events != nil {
		// Recording must never fail the request.
		if logErr := l.events.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.WarnContext(ctx, "failed to record llm request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// rejectedContent returns the model output carried by a validation or
// truncation error so it can be inspected later.
func rejectedContent(err error) string {
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return string(inv.Content)
	}
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return string(maxTok.Content)
	}
	return ""
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
