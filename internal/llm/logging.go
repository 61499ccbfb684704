package llm

import (
	"context"
	"strings"
	"time"

	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/store"
)

// EventRecorder persists LLM request events. *store.LLMEventRepo
// implements it.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

type recording struct {
	inner    Provider
	platform string
	recorder EventRecorder
	log      *logger.Logger
}

// WithLogging records every call made through p, successful or not, and
// logs it. A failure to record is logged and otherwise ignored.
func WithLogging(p Provider, platform string, recorder EventRecorder, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &recording{inner: p, platform: platform, recorder: recorder, log: log.With("platform", platform)}
}

func (l *recording) Complete(ctx context.Context, p Prompt) (*Reply, error) {
	start := time.Now()
	reply, err := l.inner.Complete(ctx, p)
	latency := time.Since(start).Milliseconds()

	ev := store.LLMRequestEventData{
		RequestID:   RequestIDFrom(ctx),
		Provider:    l.platform,
		Model:       l.inner.Model(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency,
		Success:     err == nil,
		RequestBody: transcript(p),
	}
	if reply != nil {
		if reply.Model != "" {
			ev.Model = reply.Model
		}
		ev.InputTokens = reply.Usage.InputTokens
		ev.OutputTokens = reply.Usage.OutputTokens
		ev.ResponseBody = reply.Text
	}

	if err != nil {
		ev.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "request_id", ev.RequestID, "purpose", ev.Purpose, "latency_ms", latency, "error", err)
	} else {
		l.log.Debug("llm request", "request_id", ev.RequestID, "model", ev.Model, "purpose", ev.Purpose, "latency_ms", latency,
			"input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens, "truncated", reply.Truncated)
	}

	// Recorded even when the caller's context was cancelled.
	if rerr := l.recorder.AppendLLMRequest(context.WithoutCancel(ctx), ev); rerr != nil {
		l.log.Warn("failed to record llm request event", "error", rerr)
	}
	return reply, err
}

func (l *recording) Model() string { return l.inner.Model() }

// transcript renders a prompt the way it is shown by `llm view`.
func transcript(p Prompt) string {
	var b strings.Builder
	if p.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(p.System)
		b.WriteString("\n\n")
	}
	b.WriteString("[user]\n")
	b.WriteString(p.User)
	b.WriteString("\n")
	return b.String()
}
