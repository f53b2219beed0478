package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-go/internal/config"
)

type collector struct{ strings.Builder }

func (c *collector) WriteChunk(chunk string) error {
	c.WriteString(chunk)
	return nil
}

func TestStreamChatMessages(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Rửa mặt ", "nhẹ nhàng."} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{
		APIKey:     "key",
		BaseURL:    srv.URL + "/v1/",
		Model:      "m",
		Generation: config.LLMGenerationConfig{Temperature: 0.4},
	})

	var out collector
	err := c.StreamChatMessages(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Rửa mặt nhẹ nhàng.", out.String())
	assert.True(t, got.Stream)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.4, *got.Temperature, 1e-9)
	assert.Nil(t, got.MaxTokens)
}

func TestStreamChatMessagesNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{BaseURL: srv.URL})
	err := c.StreamChatMessages(context.Background(), nil, nil, &collector{})
	assert.ErrorContains(t, err, "non-200")
}

func TestGenerationFromConfig(t *testing.T) {
	assert.Nil(t, GenerationFromConfig(config.LLMGenerationConfig{}))
	gp := GenerationFromConfig(config.LLMGenerationConfig{MaxTokens: 10})
	require.NotNil(t, gp)
	assert.Equal(t, 10, *gp.MaxTokens)
}
