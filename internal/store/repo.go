package store

import (
	"context"
	"time"

	"github.com/abhisek/worksheet/internal/worksheet"
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit   int               // max results (0 = unlimited)
	Subject worksheet.Subject // worksheets only; empty matches all
	Purpose string            // LLM events only; empty matches all
	From    time.Time         // created at or after From
	To      time.Time         // created at or before To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// WorksheetSummary is the list view of a saved worksheet.
type WorksheetSummary struct {
	ID        string            `json:"id"`
	Subject   worksheet.Subject `json:"subject"`
	Title     string            `json:"title"`
	Label     string            `json:"label"`
	Source    worksheet.Source  `json:"source"`
	Count     int               `json:"count"`
	CreatedAt time.Time         `json:"created_at"`
}

// WorksheetRepo persists generated worksheets.
type WorksheetRepo interface {
	// Save stores w. Saving an existing ID replaces it.
	Save(ctx context.Context, w *worksheet.Worksheet) error

	// Get returns the worksheet with id or ErrNotFound.
	Get(ctx context.Context, id string) (*worksheet.Worksheet, error)

	// List returns summaries newest first.
	List(ctx context.Context, opts QueryOpts) ([]WorksheetSummary, error)

	// Delete removes the worksheet with id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
