package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beelyapp/beely/internal/ai"
	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/metrics"
	"github.com/beelyapp/beely/internal/mood"
	"go.uber.org/zap"
)

const DefaultContextWindow = 10

// Reply is the outcome of one turn. Its shape does not depend on whether the
// model or the keyword fallback produced it.
type Reply struct {
	Message  *Message
	Slugs    []string
	Fallback bool
}

type AssistantConfig struct {
	Registry      *ai.Registry
	ProviderName  string
	Model         string
	ContextWindow int
	Classifier    *mood.Classifier
	Tagger        *mood.Tagger
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

type Assistant struct {
	repo       *Repo
	registry   *ai.Registry
	provider   string
	model      string
	window     int
	classifier *mood.Classifier
	tagger     *mood.Tagger
	log        *zap.Logger
	metrics    *metrics.Metrics
}

func NewAssistant(repo *Repo, cfg AssistantConfig) *Assistant {
	if cfg.ContextWindow <= 0 || cfg.ContextWindow > 100 {
		cfg.ContextWindow = DefaultContextWindow
	}
	if cfg.Classifier == nil {
		cfg.Classifier = mood.MustDefaultClassifier()
	}
	if cfg.Tagger == nil {
		cfg.Tagger = mood.NewTagger(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop()
	}
	return &Assistant{
		repo:       repo,
		registry:   cfg.Registry,
		provider:   cfg.ProviderName,
		model:      cfg.Model,
		window:     cfg.ContextWindow,
		classifier: cfg.Classifier,
		tagger:     cfg.Tagger,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// HandleTurn runs one chat turn against sess. Provider failures are recovered
// with the keyword classifier; only persistence errors are returned.
func (a *Assistant) HandleTurn(ctx context.Context, sess *Session, userText string, snap *catalog.Snapshot) (*Reply, error) {
	// history is read before the new user message is stored
	history, err := a.repo.LoadRecent(ctx, sess.SessionID, a.window)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	msgs := make([]ai.Message, 0, len(history)+2)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: BuildSystemPrompt(snap)})
	for _, m := range history {
		msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: userText})

	userMsg := &Message{SessionID: sess.SessionID, Role: RoleUser, Content: userText}
	if err := a.repo.Append(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	content, slugs, callErr := a.complete(ctx, msgs, snap)
	fallback := callErr != nil
	if fallback {
		a.log.Warn("assistant provider failed, using keyword fallback",
			zap.String("session_id", sess.SessionID),
			zap.String("user_message", userText),
			zap.String("provider", a.provider),
			zap.Error(callErr),
		)
		res := a.classifier.Classify(userText)
		content = res.Reply
		slugs = snap.Filter(res.Slugs)
	}

	if err := a.tagMood(ctx, sess, userText); err != nil {
		return nil, err
	}

	assistantMsg := &Message{SessionID: sess.SessionID, Role: RoleAssistant, Content: content}
	if len(slugs) > 0 {
		assistantMsg.SuggestedCategorySlugs = slugs
	}
	if err := a.repo.Append(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	outcome := metrics.OutcomeModel
	if fallback {
		outcome = metrics.OutcomeFallback
	}
	a.metrics.AssistantTurns.WithLabelValues(outcome).Inc()
	a.metrics.SuggestedSlugs.Observe(float64(len(slugs)))

	return &Reply{Message: assistantMsg, Slugs: slugs, Fallback: fallback}, nil
}

func (a *Assistant) complete(ctx context.Context, msgs []ai.Message, snap *catalog.Snapshot) (string, []string, error) {
	if a.registry == nil {
		return "", nil, errors.New("no ai provider configured")
	}
	p, err := a.registry.Get(ctx, a.provider, a.model)
	if err != nil {
		return "", nil, err
	}

	start := time.Now()
	raw, err := p.Chat(ctx, msgs)
	result := "ok"
	if err != nil {
		result = "error"
	}
	a.metrics.ProviderLatency.WithLabelValues(a.provider, result).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", nil, err
	}

	clean := StripMarker(raw)
	if clean == "" {
		return "", nil, ai.ErrEmptyCompletion
	}
	return clean, ParseCategories(raw, snap), nil
}

func (a *Assistant) tagMood(ctx context.Context, sess *Session, userText string) error {
	if sess.MoodDetected != nil {
		return nil
	}
	label, ok := a.tagger.Tag(userText)
	if !ok {
		return nil
	}
	set, err := a.repo.SetMoodIfUnset(ctx, sess.SessionID, label)
	if err != nil {
		return fmt.Errorf("update mood: %w", err)
	}
	if set {
		sess.MoodDetected = &label
	}
	return nil
}
