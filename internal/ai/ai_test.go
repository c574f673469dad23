package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouterChat_SendsSamplingOptions(t *testing.T) {
	var got openRouterChatReq
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Merhaba [[CATEGORIES: spor]]"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL+"/", "key", "gpt", "", "Beely", DefaultOptions(), time.Second, 0)
	out, err := p.Chat(context.Background(), []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)

	assert.Equal(t, "Merhaba [[CATEGORIES: spor]]", out)
	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, "gpt", got.Model)
	assert.Equal(t, 300, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestOpenRouterChat_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-Case") {
		case "status":
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		case "empty":
			_, _ = w.Write([]byte(`{"choices":[]}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "key", "gpt", "", "", DefaultOptions(), time.Second, 0)

	for _, c := range []string{"status", "empty", "malformed"} {
		p.Client.Transport = headerTransport{key: "X-Case", value: c}
		_, err := p.Chat(context.Background(), nil)
		assert.Error(t, err, c)
	}

	p.APIKey = ""
	_, err := p.Chat(context.Background(), nil)
	assert.Error(t, err)
}

type headerTransport struct{ key, value string }

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set(h.key, h.value)
	return http.DefaultTransport.RoundTrip(r)
}

func TestOllamaChat_MapsOptions(t *testing.T) {
	var got ollamaChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"selam"}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", Options{MaxTokens: 300, Temperature: 0.7}, time.Second)
	out, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "selam", out)
	assert.Equal(t, 300, got.Options.NumPredict)
	assert.InDelta(t, 0.7, got.Options.Temperature, 1e-9)
}

type failingProvider struct{ calls int }

func (f *failingProvider) Chat(context.Context, []Message) (string, error) {
	f.calls++
	return "", errors.New("boom")
}

func TestRegistry_BreakerOpensAfterThreshold(t *testing.T) {
	var transitions []string
	reg := NewRegistryWithBreaker(BreakerConfig{
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		OnStateChange: func(name, from, to string) {
			transitions = append(transitions, name+":"+to)
		},
	})
	fp := &failingProvider{}
	reg.Register("Fake", func(context.Context, string) (Provider, error) { return fp, nil })

	p, err := reg.Get(context.Background(), "fake", "m")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = p.Chat(context.Background(), nil)
		require.Error(t, err)
	}
	_, err = p.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, fp.calls)
	assert.Equal(t, "open", reg.BreakerState("fake"))
	assert.Equal(t, []string{"fake:open"}, transitions)
}

type canceledProvider struct{ calls int }

func (c *canceledProvider) Chat(context.Context, []Message) (string, error) {
	c.calls++
	return "", context.Canceled
}

func TestRegistry_CanceledCallsDoNotTripBreaker(t *testing.T) {
	reg := NewRegistryWithBreaker(BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute})
	cp := &canceledProvider{}
	reg.Register("fake", func(context.Context, string) (Provider, error) { return cp, nil })

	p, err := reg.Get(context.Background(), "fake", "m")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = p.Chat(context.Background(), nil)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 5, cp.calls)
	assert.Equal(t, "closed", reg.BreakerState("fake"))
}

func TestRegistry_UnknownProvider(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get(context.Background(), "nope", "")
	assert.Error(t, err)
	assert.Equal(t, "", reg.BreakerState("nope"))
}
