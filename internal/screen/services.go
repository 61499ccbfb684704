package screen

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/study"
)

// Services are the domain services screens read from and write to.
type Services struct {
	Study     *study.Service
	Engine    *achievements.Engine
	Encourage *encourage.Service
	Log       *logger.Logger
}

// EncouragementMsg delivers the outcome of an asynchronous encouragement
// request.
type EncouragementMsg struct {
	Result encourage.Result
}

// AwaitEncouragement turns a result channel into a command that blocks
// until the result arrives.
func AwaitEncouragement(ch <-chan encourage.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			r.Err = context.Canceled
		}
		return EncouragementMsg{Result: r}
	}
}

// RequestEncouragement starts req in the background. It returns nil when
// no encouragement service is wired.
func (s Services) RequestEncouragement(req encourage.Request) tea.Cmd {
	if s.Encourage == nil {
		return nil
	}
	return AwaitEncouragement(s.Encourage.Request(context.Background(), req))
}

// EncouragementNote describes a failed request for display. An empty
// string means the failure should not be shown.
func EncouragementNote(err error) string {
	var authErr *llm.ErrAuthentication
	switch {
	case err == nil, errors.Is(err, encourage.ErrSuppressed):
		return ""
	case errors.Is(err, encourage.ErrNotConfigured):
		return "AI is not configured. Run: studyhall settings ai --platform <name> --key <key>"
	case errors.Is(err, encourage.ErrTimeout):
		return "The AI took too long to answer. Try again later."
	case errors.As(err, &authErr):
		return "The AI rejected the API key. Check your settings."
	default:
		return "Could not get an encouragement: " + err.Error()
	}
}

// Changed returns a command broadcasting DataChangedMsg.
func Changed() tea.Cmd {
	return func() tea.Msg { return DataChangedMsg{} }
}
