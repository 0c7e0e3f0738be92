package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// llmRequestEventsColumns holds one row per LLM API call.
	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestEventsColumns[1]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[4]}},
			{Name: "llmrequestevent_model", Columns: []*schema.Column{llmRequestEventsColumns[3]}},
		},
	}

	// worksheetsColumns keeps the searchable fields in columns and the
	// whole worksheet as JSON in body.
	worksheetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "subject", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "label", Type: field.TypeString},
		{Name: "source", Type: field.TypeString},
		{Name: "problem_count", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "body", Type: field.TypeJSON},
	}
	worksheetsTable = &schema.Table{
		Name:       "worksheets",
		Columns:    worksheetsColumns,
		PrimaryKey: []*schema.Column{worksheetsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "worksheet_subject", Columns: []*schema.Column{worksheetsColumns[1]}},
			{Name: "worksheet_created_at", Columns: []*schema.Column{worksheetsColumns[6]}},
		},
	}

	tables = []*schema.Table{
		llmRequestEventsTable,
		worksheetsTable,
	}
)
