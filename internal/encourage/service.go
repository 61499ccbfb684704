package encourage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/store"
)

// Settings keys holding the AI configuration.
const (
	KeyPlatform  = "ai.platform"
	KeyAPIKey    = "ai.api_key"
	KeyBaseURL   = "ai.base_url"
	KeyModel     = "ai.model"
	KeyPersonaID = "ai.persona_id"
)

// Request parameters.
const (
	DefaultTimeout = 30 * time.Second
	MaxTokens      = 1500
	Temperature    = 0.8
	HistoryKeep    = 3
	Purpose        = "encouragement"
)

var (
	// ErrNotConfigured is returned when no AI platform or key is set.
	ErrNotConfigured = errors.New("AI encouragement is not configured")
	// ErrTimeout is returned when the request timeout elapses.
	ErrTimeout = errors.New("encouragement request timed out")
	// ErrSuppressed is returned inside the minimum interval.
	ErrSuppressed = errors.New("encouragement suppressed: requested too recently")
)

// ProviderFactory builds a provider for a resolved configuration.
type ProviderFactory func(ctx context.Context, cfg llm.Config) (llm.Provider, error)

// Options configures a Service. Zero values pick the defaults.
type Options struct {
	Base        llm.Config
	Factory     ProviderFactory
	Log         *logger.Logger
	Now         func() time.Time
	MinInterval time.Duration
	Timeout     time.Duration
}

// Service writes encouragement messages through an LLM provider.
type Service struct {
	st      *store.Store
	policy  *Policy
	base    llm.Config
	factory ProviderFactory
	log     *logger.Logger
	now     func() time.Time
	timeout time.Duration
}

// Request is one encouragement request.
type Request struct {
	Scene Scene
	// Values fill the scene template. Progress values are added when
	// missing.
	Values map[string]any
	// PersonaID selects the persona; 0 uses the active one.
	PersonaID int
}

// Result is delivered by Service.Request.
type Result struct {
	Encouragement store.Encouragement
	Err           error
}

// NewService returns a Service backed by st.
func NewService(st *store.Store, opts Options) *Service {
	s := &Service{
		st:      st,
		base:    opts.Base,
		factory: opts.Factory,
		log:     opts.Log,
		now:     opts.Now,
		timeout: opts.Timeout,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.factory == nil {
		s.factory = func(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
			return llm.NewProvider(ctx, cfg, st.Session().LLMEvents(), s.log)
		}
	}
	s.policy = NewPolicy(opts.MinInterval, s.now)
	return s
}

// Policy returns the trigger policy shared with the study service.
func (s *Service) Policy() *Policy { return s.policy }

// Config returns the base configuration with stored settings applied.
func (s *Service) Config(ctx context.Context) (llm.Config, error) {
	cfg := s.base
	settings := s.st.Session().Settings()
	for key, dst := range map[string]*string{
		KeyPlatform: &cfg.Platform,
		KeyAPIKey:   &cfg.APIKey,
		KeyBaseURL:  &cfg.BaseURL,
		KeyModel:    &cfg.Model,
	} {
		v, ok, err := settings.Get(ctx, key)
		if err != nil {
			return llm.Config{}, err
		}
		if ok && v != "" {
			*dst = v
		}
	}
	return cfg, nil
}

// SaveConfig stores the AI settings. Empty fields are cleared.
func (s *Service) SaveConfig(ctx context.Context, platform, apiKey, baseURL, model string) error {
	if _, ok := llm.Platforms[platform]; !ok {
		return fmt.Errorf("unknown LLM platform: %q", platform)
	}
	return s.st.InTx(ctx, func(tx *store.Session) error {
		for key, v := range map[string]string{
			KeyPlatform: platform,
			KeyAPIKey:   apiKey,
			KeyBaseURL:  baseURL,
			KeyModel:    model,
		} {
			var err error
			if v == "" {
				err = tx.Settings().Delete(ctx, key)
			} else {
				err = tx.Settings().Set(ctx, key, v)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Request runs Generate on its own goroutine. The channel receives
// exactly one Result and is then closed.
func (s *Service) Request(ctx context.Context, req Request) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		enc, err := s.Generate(ctx, req)
		out <- Result{Encouragement: enc, Err: err}
	}()
	return out
}

// Generate requests one message synchronously and stores it.
func (s *Service) Generate(ctx context.Context, req Request) (store.Encouragement, error) {
	if !req.Scene.Valid() {
		return store.Encouragement{}, fmt.Errorf("unknown scene %q", req.Scene)
	}
	if !s.policy.Ready() {
		return store.Encouragement{}, ErrSuppressed
	}

	cfg, err := s.Config(ctx)
	if err != nil {
		return store.Encouragement{}, err
	}
	if !cfg.Configured() {
		return store.Encouragement{}, ErrNotConfigured
	}

	persona, err := s.persona(ctx, req.PersonaID)
	if err != nil {
		return store.Encouragement{}, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return store.Encouragement{}, err
	}
	values := map[string]any{
		"current":     snap.Today.Current,
		"target":      snap.Today.Target,
		"streak_days": snap.Streak,
		"total":       snap.Total,
	}
	for k, v := range req.Values {
		values[k] = v
	}
	system, user := BuildPrompt(persona, req.Scene, snap, values)

	requestID := uuid.NewString()
	text, err := s.send(llm.WithRequestID(ctx, requestID), cfg, system, user)
	if err != nil {
		s.log.Warn("encouragement failed", "request_id", requestID, "scene", req.Scene, "platform", cfg.Platform, "error", err)
		return store.Encouragement{}, err
	}

	var enc store.Encouragement
	err = s.st.InTx(ctx, func(tx *store.Session) error {
		var addErr error
		enc, addErr = tx.Encouragements().Add(ctx, store.Encouragement{
			PersonaName:  persona.Name,
			TriggerScene: string(req.Scene),
			Content:      text,
			RequestID:    requestID,
		}, HistoryKeep)
		return addErr
	})
	if err != nil {
		return store.Encouragement{}, err
	}
	s.policy.MarkSuccess()
	s.log.Info("encouragement stored", "request_id", requestID, "scene", req.Scene, "persona", persona.Name)
	return enc, nil
}

// TestConnection sends a one-line probe with the current configuration.
func (s *Service) TestConnection(ctx context.Context) (string, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return "", err
	}
	if !cfg.Configured() {
		return "", ErrNotConfigured
	}
	return s.send(llm.WithRequestID(ctx, uuid.NewString()), cfg, "", "Reply with one short sentence to confirm the connection works.")
}

func (s *Service) send(ctx context.Context, cfg llm.Config, system, user string) (string, error) {
	provider, err := s.factory(ctx, cfg)
	if err != nil {
		return "", err
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	tctx = llm.WithPurpose(tctx, Purpose)

	s.log.Debug("encouragement request", "request_id", llm.RequestIDFrom(ctx), "model", provider.Model())
	reply, err := provider.Complete(tctx, llm.Prompt{
		System:      system,
		User:        user,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("encouragement request: %w", err)
	}
	if reply.Truncated {
		s.log.Debug("encouragement reply truncated", "model", reply.Model)
	}

	text := cleanReply(reply.Text)
	if text == "" {
		return "", &llm.ErrInvalidResponse{Text: reply.Text, Err: errors.New("empty reply")}
	}
	return text, nil
}

func (s *Service) persona(ctx context.Context, id int) (store.Persona, error) {
	sess := s.st.Session()
	if id == 0 {
		v, ok, err := sess.Settings().Get(ctx, KeyPersonaID)
		if err != nil {
			return store.Persona{}, err
		}
		if ok {
			id, _ = strconv.Atoi(v)
		}
	}
	if id != 0 {
		p, err := sess.Personas().Get(ctx, id)
		if err == nil || !errors.Is(err, store.ErrNotFound) {
			return p, err
		}
	}

	// Fall back to the first active persona, then to the first preset.
	all, err := sess.Personas().ListActive(ctx)
	if err != nil {
		return store.Persona{}, err
	}
	if len(all) > 0 {
		return all[0], nil
	}
	return PresetPersonas()[0], nil
}

func (s *Service) snapshot(ctx context.Context) (Snapshot, error) {
	agg := progress.New(s.st.Session(), s.now)
	var snap Snapshot
	var err error
	if snap.Today, err = agg.TodayProgress(ctx); err != nil {
		return snap, err
	}
	if snap.Streak, err = agg.StreakDays(ctx); err != nil {
		return snap, err
	}
	if snap.Total, err = agg.TotalCount(ctx); err != nil {
		return snap, err
	}
	snap.Level = progress.ComputeLevel(snap.Total)
	return snap, nil
}

// SetActivePersona stores the persona used when a request names none.
func (s *Service) SetActivePersona(ctx context.Context, id int) error {
	return s.st.InTx(ctx, func(tx *store.Session) error {
		if _, err := tx.Personas().Get(ctx, id); err != nil {
			return err
		}
		return tx.Settings().Set(ctx, KeyPersonaID, strconv.Itoa(id))
	})
}

// ActivePersona returns the persona used when a request names none.
func (s *Service) ActivePersona(ctx context.Context) (store.Persona, error) {
	return s.persona(ctx, 0)
}

// Personas lists the active personas.
func (s *Service) Personas(ctx context.Context) ([]store.Persona, error) {
	return s.st.Session().Personas().ListActive(ctx)
}

// AddPersona creates a custom persona.
func (s *Service) AddPersona(ctx context.Context, p store.Persona) (store.Persona, error) {
	if p.Name == "" || p.SystemPrompt == "" {
		return store.Persona{}, errors.New("persona needs a name and a system prompt")
	}
	p.Kind = store.PersonaCustom
	var out store.Persona
	err := s.st.InTx(ctx, func(tx *store.Session) error {
		var err error
		out, err = tx.Personas().Create(ctx, p)
		return err
	})
	return out, err
}

// UpdatePersonaPrompt replaces a persona's system prompt.
func (s *Service) UpdatePersonaPrompt(ctx context.Context, id int, prompt string) error {
	if prompt == "" {
		return errors.New("system prompt must not be empty")
	}
	return s.st.InTx(ctx, func(tx *store.Session) error {
		return tx.Personas().UpdatePrompt(ctx, id, prompt)
	})
}

// DeletePersona removes a persona and clears it as the active one.
func (s *Service) DeletePersona(ctx context.Context, id int) error {
	return s.st.InTx(ctx, func(tx *store.Session) error {
		if err := tx.Personas().Delete(ctx, id); err != nil {
			return err
		}
		v, ok, err := tx.Settings().Get(ctx, KeyPersonaID)
		if err != nil || !ok || v != strconv.Itoa(id) {
			return err
		}
		return tx.Settings().Delete(ctx, KeyPersonaID)
	})
}

// History returns the stored messages, newest first.
func (s *Service) History(ctx context.Context) ([]store.Encouragement, error) {
	return s.st.Session().Encouragements().Recent(ctx, HistoryKeep)
}
