package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/worksheet/internal/worksheet"
)

// worksheetRepo implements WorksheetRepo on the worksheets table.
type worksheetRepo struct {
	db *sql.DB
}

func (r *worksheetRepo) Save(ctx context.Context, w *worksheet.Worksheet) error {
	body, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode worksheet: %w", err)
	}

	query, args := builder().Insert(worksheetsTable.Name).
		Columns("id", "subject", "title", "label", "source", "problem_count", "created_at", "body").
		Values(w.ID, string(w.Subject), w.Title, w.Label, string(w.Source), w.Len(), w.CreatedAt.UTC(), string(body)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save worksheet %s: %w", w.ID, err)
	}
	return nil
}

func (r *worksheetRepo) Get(ctx context.Context, id string) (*worksheet.Worksheet, error) {
	query, args := builder().Select("body").
		From(entsql.Table(worksheetsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var body []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("worksheet %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get worksheet %s: %w", id, err)
	}

	var w worksheet.Worksheet
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode worksheet %s: %w", id, err)
	}
	return &w, nil
}

func (r *worksheetRepo) List(ctx context.Context, opts QueryOpts) ([]WorksheetSummary, error) {
	sel := builder().Select("id", "subject", "title", "label", "source", "problem_count", "created_at").
		From(entsql.Table(worksheetsTable.Name)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if opts.Subject != "" {
		sel.Where(entsql.EQ("subject", string(opts.Subject)))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("created_at", opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	defer rows.Close()

	var out []WorksheetSummary
	for rows.Next() {
		var s WorksheetSummary
		var subject, source string
		if err := rows.Scan(&s.ID, &subject, &s.Title, &s.Label, &source, &s.Count, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan worksheet: %w", err)
		}
		s.Subject = worksheet.Subject(subject)
		s.Source = worksheet.Source(source)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *worksheetRepo) Delete(ctx context.Context, id string) error {
	query, args := builder().Delete(worksheetsTable.Name).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete worksheet %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete worksheet %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("worksheet %s: %w", id, ErrNotFound)
	}
	return nil
}
