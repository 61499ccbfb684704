package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	RequestID    string
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
	ID           int       `db:"id"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
	Timestamp    time.Time `db:"created_at"`
	RequestID    string    `db:"request_id"`
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// LLMEventRepo records and queries LLM request events.
type LLMEventRepo struct{ s *Session }

// AppendLLMRequest records an LLM API call event.
func (r *LLMEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.s.insert(ctx, entsql.Insert("llm_events").
		Columns("provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
			"success", "error_message", "request_body", "response_body", "created_at", "request_id").
		Values(data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs,
			data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody, r.s.now(), data.RequestID))
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. A limit of 0 means no
// limit.
func (r *LLMEventRepo) Recent(ctx context.Context, limit int) ([]LLMEvent, error) {
	var out []LLMEvent
	sel := entsql.Select("*").From(entsql.Table("llm_events")).OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	if err := r.s.selectAll(ctx, &out, sel); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

// ForRequest returns the events recorded for one logical request, oldest
// first. Retries of the same request share its ID.
func (r *LLMEventRepo) ForRequest(ctx context.Context, requestID string) ([]LLMEvent, error) {
	var out []LLMEvent
	sel := entsql.Select("*").From(entsql.Table("llm_events")).
		Where(entsql.EQ("request_id", requestID)).
		OrderBy("id")
	if err := r.s.selectAll(ctx, &out, sel); err != nil {
		return nil, fmt.Errorf("query LLM events for request %s: %w", requestID, err)
	}
	return out, nil
}

// Get returns one event, or nil if it does not exist.
func (r *LLMEventRepo) Get(ctx context.Context, id int) (*LLMEvent, error) {
	var e LLMEvent
	err := r.s.get(ctx, &e, entsql.Select("*").From(entsql.Table("llm_events")).Where(entsql.EQ("id", id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return &e, nil
}

// UsageByPurpose aggregates token usage per purpose.
func (r *LLMEventRepo) UsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var out []PurposeUsage
	err := r.s.selectRaw(ctx, &out, `
		SELECT purpose, COUNT(*) AS calls,
		       COALESCE(SUM(input_tokens), 0) AS input_tokens,
		       COALESCE(SUM(output_tokens), 0) AS output_tokens,
		       CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER) AS avg_latency_ms
		FROM llm_events
		GROUP BY purpose
		ORDER BY calls DESC, purpose`)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	return out, nil
}

// UsageByModel aggregates token usage per model.
func (r *LLMEventRepo) UsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var out []ModelUsage
	err := r.s.selectRaw(ctx, &out, `
		SELECT model, COUNT(*) AS calls,
		       COALESCE(SUM(input_tokens), 0) AS input_tokens,
		       COALESCE(SUM(output_tokens), 0) AS output_tokens
		FROM llm_events
		GROUP BY model
		ORDER BY calls DESC, model`)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	return out, nil
}
