package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = "test-key"
	return cfg
}

func completionBody(text string) string {
	resp := map[string]any{
		"model": "gpt-4o",
		"choices": []map[string]any{
			{"message": map[string]any{"content": text}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("SPECIES: Ficus elastica\nCONFIDENCE: 85%")))
	}))
	defer srv.Close()

	client := NewOpenAIClient(testConfig(srv.URL), NoopObserver{})
	resp, err := client.Complete(context.Background(), CompleteRequest{
		Task:         TaskObserve,
		Model:        "gpt-4o",
		SystemPrompt: "You are a botanist.",
		UserPrompt:   "Identify this plant.",
	})

	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Ficus elastica")
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.GreaterOrEqual(t, resp.LatencyMs, int64(0))
}

func TestOpenAIClient_Complete_VisionPayload(t *testing.T) {
	var rawBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
		w.Write([]byte(completionBody("observed")))
	}))
	defer srv.Close()

	client := NewOpenAIClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Complete(context.Background(), CompleteRequest{
		Task:       TaskObserve,
		Model:      "gpt-4o",
		UserPrompt: "Look at this.",
		ImageJPEG:  []byte{0xFF, 0xD8, 0xFF},
	})
	require.NoError(t, err)

	msgs := rawBody["messages"].([]any)
	require.Len(t, msgs, 1)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.True(t, strings.HasPrefix(img["url"].(string), "data:image/jpeg;base64,"))
	assert.Equal(t, "high", img["detail"])
}

func TestOpenAIClient_Complete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(completionBody("late")))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Tasks = map[TaskType]TaskConfig{
		TaskObserve: {Temperature: 0.2, MaxTokens: 100, TimeoutMs: 50},
	}

	client := NewOpenAIClient(cfg, NoopObserver{})
	_, err := client.Complete(context.Background(), CompleteRequest{
		Task:       TaskObserve,
		Model:      "gpt-4o",
		UserPrompt: "slow",
	})
	require.ErrorIs(t, err, ErrTimeout)
}

func TestOpenAIClient_Complete_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAIClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Complete(context.Background(), CompleteRequest{
		Task:       TaskDiagnose,
		Model:      "gpt-4o",
		UserPrompt: "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClient_Complete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"gpt-4o","choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Complete(context.Background(), CompleteRequest{
		Task:       TaskDiagnose,
		Model:      "gpt-4o",
		UserPrompt: "hello",
	})
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestOpenAIClient_ObserverReceivesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	var buf strings.Builder
	client := NewOpenAIClient(testConfig(srv.URL), NewLogObserver(&buf))
	_, err := client.Complete(context.Background(), CompleteRequest{
		Task:       TaskRecalibrate,
		Model:      "gpt-4o-mini",
		UserPrompt: "interval?",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "task=recalibrate")
	assert.Contains(t, buf.String(), "status=ok")
}
