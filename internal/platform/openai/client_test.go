package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type recordedRequest struct {
	Temperature    *float64        `json:"temperature"`
	ResponseFormat json.RawMessage `json:"response_format"`
	Messages       []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	replies  []func(w http.ResponseWriter)
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec recordedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		f.mu.Lock()
		idx := len(f.requests)
		f.requests = append(f.requests, rec)
		f.mu.Unlock()
		if idx < len(f.replies) {
			f.replies[idx](w)
			return
		}
		okReply("fallback")(w)
	}
}

func okReply(content string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}
}

func errReply(status int, message string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": message, "type": "invalid_request_error"},
		})
	}
}

func newTestClient(t *testing.T, api *fakeAPI, retries int) Client {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	temp := 0.2
	c, err := NewClient(logger.NewNop(), Config{
		APIKey:      "test",
		BaseURL:     srv.URL + "/v1",
		Model:       "test-model",
		Timeout:     10 * time.Second,
		MaxRetries:  retries,
		Temperature: &temp,
	})
	require.NoError(t, err)
	return c
}

func TestCompleteJSONMode(t *testing.T) {
	api := &fakeAPI{replies: []func(http.ResponseWriter){okReply(`{"1":"x"}`)}}
	c := newTestClient(t, api, 0)

	resp, err := c.Complete(context.Background(), Request{System: "sys", User: "usr", JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, `{"1":"x"}`, resp.Text)
	assert.Equal(t, 10, resp.PromptTokens)

	require.Len(t, api.requests, 1)
	got := api.requests[0]
	assert.Contains(t, string(got.ResponseFormat), "json_object")
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.2, *got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "sys")
	assert.Contains(t, got.Messages[0].Content, marker())
	assert.Equal(t, "usr", got.Messages[1].Content)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	api := &fakeAPI{replies: []func(http.ResponseWriter){
		errReply(http.StatusServiceUnavailable, "overloaded"),
		okReply("done"),
	}}
	c := newTestClient(t, api, 1)

	resp, err := c.Complete(context.Background(), Request{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Text)
	assert.Len(t, api.requests, 2)
}

func TestCompleteNoRetryFailsImmediately(t *testing.T) {
	api := &fakeAPI{replies: []func(http.ResponseWriter){
		errReply(http.StatusServiceUnavailable, "overloaded"),
		okReply("never"),
	}}
	c := newTestClient(t, api, 3)

	_, err := c.Complete(context.Background(), Request{System: "s", User: "u", NoRetry: true})
	require.Error(t, err)
	assert.Len(t, api.requests, 1)
}

func TestCompleteDropsRejectedTemperature(t *testing.T) {
	api := &fakeAPI{replies: []func(http.ResponseWriter){
		errReply(http.StatusBadRequest, "Unsupported parameter: 'temperature' is not supported with this model."),
		okReply("ok"),
		okReply("again"),
	}}
	c := newTestClient(t, api, 0)

	_, err := c.Complete(context.Background(), Request{System: "s", User: "u"})
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), Request{System: "s", User: "u"})
	require.NoError(t, err)

	require.Len(t, api.requests, 3)
	assert.NotNil(t, api.requests[0].Temperature)
	assert.Nil(t, api.requests[1].Temperature)
	assert.Nil(t, api.requests[2].Temperature, "learned rule applies to later calls")
}

func TestParseNoTempModelRules(t *testing.T) {
	rules := parseNoTempModelRules("o1-*, GPT-5 ,")
	assert.True(t, rules.models["gpt-5"])
	assert.Equal(t, []string{"o1"}, rules.prefixes)
}

func marker() string { return "VORHABEN_PROMPT_STYLE_V1" }
