// ABOUTME: Tests for the OpenAI client against a local fake API server
// ABOUTME: Verifies batching, ordering, request parameters and single-attempt errors
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// fakeOpenAI serves /v1/embeddings (vector = [len(input), position]) and
// /v1/chat/completions (echoes a canned answer).
func fakeOpenAI(t *testing.T, calls *int32, lastChat *chatRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]map[string]any, len(req.Input))
		// Reverse the order to prove the client sorts by index
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			data[i] = map[string]any{
				"object":    "embedding",
				"index":     j,
				"embedding": []float32{float32(len(req.Input[j])), float32(j)},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	})

	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if lastChat != nil {
			_ = json.NewDecoder(r.Body).Decode(lastChat)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "The capital of France is Paris."},
			}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, batch int) *OpenAIClient {
	t.Helper()
	cfg := DefaultConfig("test-key")
	cfg.BaseURL = baseURL + "/v1"
	cfg.EmbeddingBatchSize = batch
	client, err := NewOpenAIClientWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClientWithConfig() error: %v", err)
	}
	return client
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestEmbedDocuments_BatchesAndOrder(t *testing.T) {
	var calls int32
	srv := fakeOpenAI(t, &calls, nil)
	client := newTestClient(t, srv.URL, 2)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := client.EmbedDocuments(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedDocuments() error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("requests = %d, want 3 batches", got)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("len(vectors) = %d, want %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("vector %d = %v, want first component %d", i, v, len(texts[i]))
		}
	}
}

func TestEmbedQuery(t *testing.T) {
	var calls int32
	srv := fakeOpenAI(t, &calls, nil)
	client := newTestClient(t, srv.URL, 10)

	v, err := client.EmbedQuery(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("EmbedQuery() error: %v", err)
	}
	if len(v) != 2 || v[0] != 5 {
		t.Errorf("EmbedQuery() = %v, want [5 0]", v)
	}
}

func TestComplete(t *testing.T) {
	var calls int32
	var req chatRequest
	srv := fakeOpenAI(t, &calls, &req)
	client := newTestClient(t, srv.URL, 10)

	answer, err := client.Complete(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if answer != "The capital of France is Paris." {
		t.Errorf("answer = %q", answer)
	}
	if req.Temperature < 0.39 || req.Temperature > 0.41 {
		t.Errorf("temperature = %f, want 0.4", req.Temperature)
	}
	if req.Model != DefaultChatModel {
		t.Errorf("model = %q, want %q", req.Model, DefaultChatModel)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Errorf("messages = %+v, want one user message", req.Messages)
	}
}

func TestComplete_NoRetryOnError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 10)
	if _, err := client.Complete(context.Background(), "hi"); err == nil {
		t.Fatal("Complete() expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("requests = %d, want exactly 1", got)
	}
}
