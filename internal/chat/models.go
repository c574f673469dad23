package chat

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Session struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID    string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	UserID       uint64    `gorm:"index;not null" json:"-"`
	Title        string    `gorm:"type:varchar(255);not null;default:''" json:"title"`
	MoodDetected *string   `gorm:"type:varchar(64)" json:"mood_detected"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Session) TableName() string { return "chat_sessions" }

// Message rows are append-only. SuggestedCategorySlugs is only set on
// assistant turns that proposed categories.
type Message struct {
	ID                     uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID              string                      `gorm:"type:varchar(26);not null;index:idx_chat_msg_session_created,priority:1" json:"session_id"`
	Role                   string                      `gorm:"type:varchar(16);not null" json:"role"`
	Content                string                      `gorm:"type:text;not null" json:"content"`
	SuggestedCategorySlugs datatypes.JSONSlice[string] `json:"suggested_category_slugs"`
	CreatedAt              time.Time                   `gorm:"index:idx_chat_msg_session_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

// SessionSummary is one row of a user's chat history list.
type SessionSummary struct {
	SessionID    string    `json:"id"`
	Title        string    `json:"title"`
	MoodDetected *string   `json:"mood_detected"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int64     `json:"message_count"`
}
