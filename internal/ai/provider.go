package ai

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider performs one blocking chat completion and returns the assistant text.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Options are the sampling parameters sent with every completion request.
type Options struct {
	MaxTokens   int
	Temperature float64
}

func DefaultOptions() Options {
	return Options{MaxTokens: 300, Temperature: 0.7}
}

var ErrEmptyCompletion = errors.New("ai: empty completion")
