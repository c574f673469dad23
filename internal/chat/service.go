package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/common"
	"gorm.io/gorm"
)

const (
	MaxMessageRunes = 1000
	titleRunes      = 50
	historyLimit    = 10
	untitled        = "Yeni Sohbet"
)

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = fmt.Errorf("message must be at most %d characters", MaxMessageRunes)
)

// MessageView is the wire form of a message with its categories hydrated.
type MessageView struct {
	ID                  uint64           `json:"id"`
	Role                string           `json:"role"`
	Content             string           `json:"content"`
	SuggestedCategories []catalog.Detail `json:"suggested_categories"`
	Timestamp           string           `json:"timestamp"`
}

type TurnResult struct {
	SessionID string
	Message   MessageView
	Fallback  bool
}

type SessionView struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	MoodDetected *string `json:"mood_detected"`
}

// ChatPage is everything the chat screen needs on first load.
type ChatPage struct {
	Session    *SessionView       `json:"session"`
	Messages   []MessageView      `json:"initial_messages"`
	Categories []catalog.Category `json:"categories"`
}

type Service struct {
	repo      *Repo
	catalog   *catalog.Repo
	assistant *Assistant
	now       func() time.Time
}

func NewService(repo *Repo, catalogRepo *catalog.Repo, assistant *Assistant) *Service {
	return &Service{repo: repo, catalog: catalogRepo, assistant: assistant, now: time.Now}
}

// Send handles one chat turn for userID. An empty or unknown sessionID starts
// a new session titled after the message.
func (s *Service) Send(ctx context.Context, userID uint64, sessionID, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := s.resolveSession(ctx, userID, sessionID, text)
	if err != nil {
		return nil, err
	}

	reply, err := s.assistant.HandleTurn(ctx, sess, text, snap)
	if err != nil {
		return nil, err
	}
	return &TurnResult{
		SessionID: sess.SessionID,
		Message:   toView(reply.Message, snap),
		Fallback:  reply.Fallback,
	}, nil
}

func (s *Service) resolveSession(ctx context.Context, userID uint64, sessionID, text string) (*Session, error) {
	if sessionID != "" {
		sess, err := s.repo.GetSessionForUser(ctx, userID, sessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.createSession(ctx, userID, truncateRunes(text, titleRunes))
}

func (s *Service) createSession(ctx context.Context, userID uint64, title string) (*Session, error) {
	sid, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	sess := &Session{SessionID: sid, UserID: userID, Title: title}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// NewSession opens an empty session and returns a canned welcome; the
// welcome is not stored.
func (s *Service) NewSession(ctx context.Context, userID uint64, userName string) (*TurnResult, error) {
	sess, err := s.createSession(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return &TurnResult{
		SessionID: sess.SessionID,
		Message: MessageView{
			ID:                  0,
			Role:                RoleAssistant,
			Content:             WelcomeMessage(userName),
			SuggestedCategories: []catalog.Detail{},
			Timestamp:           isoTime(s.now()),
		},
	}, nil
}

func WelcomeMessage(userName string) string {
	first := userName
	if f := strings.Fields(userName); len(f) > 0 {
		first = f[0]
	}
	return fmt.Sprintf("Merhaba %s! 🐝 Ben Beely, senin kişisel içerik asistanın. Bugün nasıl hissediyorsun? Ruh haline göre sana en uygun videoları önerebilirim!", first)
}

// History lists the ten most recent sessions of userID.
func (s *Service) History(ctx context.Context, userID uint64) ([]SessionSummary, error) {
	rows, err := s.repo.ListSessionsForUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Title == "" {
			rows[i].Title = untitled
		}
	}
	return rows, nil
}

// Current loads the latest session with all of its messages.
func (s *Service) Current(ctx context.Context, userID uint64) (*ChatPage, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	page := &ChatPage{Messages: []MessageView{}, Categories: snap.All()}

	sess, err := s.repo.LatestSessionForUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return page, nil
	}
	if err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}
	page.Session = &SessionView{ID: sess.SessionID, Title: sess.Title, MoodDetected: sess.MoodDetected}
	for i := range msgs {
		page.Messages = append(page.Messages, toView(&msgs[i], snap))
	}
	return page, nil
}

func toView(m *Message, snap *catalog.Snapshot) MessageView {
	return MessageView{
		ID:                  m.ID,
		Role:                m.Role,
		Content:             m.Content,
		SuggestedCategories: snap.Details(m.SuggestedCategorySlugs),
		Timestamp:           isoTime(m.CreatedAt),
	}
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
