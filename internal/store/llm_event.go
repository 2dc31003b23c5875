package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// eventRepo implements EventRepo over the llm_requests table.
type eventRepo struct {
	db *sqlx.DB
}

type llmEventRow struct {
	ID           int64  `db:"id"`
	CreatedAt    int64  `db:"created_at"`
	Provider     string `db:"provider"`
	Model        string `db:"model"`
	Purpose      string `db:"purpose"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	LatencyMs    int64  `db:"latency_ms"`
	Success      bool   `db:"success"`
	ErrorMessage string `db:"error_message"`
	RequestBody  string `db:"request_body"`
	ResponseBody string `db:"response_body"`
}

func (r llmEventRow) toEvent() LLMEvent {
	return LLMEvent{
		ID:        r.ID,
		Timestamp: time.UnixMilli(r.CreatedAt),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     r.Provider,
			Model:        r.Model,
			Purpose:      r.Purpose,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
			RequestBody:  r.RequestBody,
			ResponseBody: r.ResponseBody,
		},
	}
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO llm_requests
		(created_at, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
		data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var where []string
	var args []any
	if opts.After > 0 {
		where = append(where, "id > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "id < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, opts.To.UnixMilli())
	}
	if opts.Purpose != "" {
		where = append(where, "purpose = ?")
		args = append(args, opts.Purpose)
	}

	query := `SELECT * FROM llm_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var rows []llmEventRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	out := make([]LLMEvent, len(rows))
	for i, row := range rows {
		out[i] = row.toEvent()
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	var row llmEventRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT * FROM llm_requests WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	e := row.toEvent()
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var out []PurposeUsage
	err := r.db.SelectContext(ctx, &out, `SELECT purpose,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens,
		CAST(COALESCE(AVG(latency_ms), 0) AS BIGINT) AS avg_latency_ms
		FROM llm_requests GROUP BY purpose ORDER BY calls DESC, purpose`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var out []ModelUsage
	err := r.db.SelectContext(ctx, &out, `SELECT model,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens
		FROM llm_requests GROUP BY model ORDER BY calls DESC, model`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}
