package chat

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// GetSessionForUser returns gorm.ErrRecordNotFound when the session does not
// exist or belongs to someone else.
func (r *Repo) GetSessionForUser(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) LatestSessionForUser(ctx context.Context, userID uint64) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) ListSessionsForUser(ctx context.Context, userID uint64, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []SessionSummary
	err := r.db.WithContext(ctx).
		Model(&Session{}).
		Select("chat_sessions.session_id, chat_sessions.title, chat_sessions.mood_detected, chat_sessions.created_at, " +
			"(SELECT COUNT(*) FROM chat_messages WHERE chat_messages.session_id = chat_sessions.session_id) AS message_count").
		Where("chat_sessions.user_id = ?", userID).
		Order("chat_sessions.created_at DESC, chat_sessions.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetMoodIfUnset writes mood only while mood_detected is still NULL, so the
// first classification of a session sticks even when two turns race.
func (r *Repo) SetMoodIfUnset(ctx context.Context, sessionID, mood string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Session{}).
		Where("session_id = ? AND mood_detected IS NULL", sessionID).
		Update("mood_detected", mood)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repo) Append(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// LoadRecent returns at most limit messages, oldest -> newest.
func (r *Repo) LoadRecent(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	var desc []Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&desc).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(desc)-1; i < j; i, j = i+1, j-1 {
		desc[i], desc[j] = desc[j], desc[i]
	}
	return desc, nil
}

// ListMessages returns the whole session in ASC order.
func (r *Repo) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Session{}).Count(&n).Error
	return n, err
}
