package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackdesk/deskagent/src/aisdk"
)

func completionResponse(content string) aisdk.ChatCompletionResponse {
	return aisdk.ChatCompletionResponse{
		ID:     "cmpl-1",
		Object: "chat.completion",
		Model:  "test-model",
		Choices: []aisdk.Choice{{
			Message:      aisdk.Message{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
	}
}

func TestCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req aisdk.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		json.NewEncoder(w).Encode(completionResponse("hello"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Model: "test-model"})

	resp, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{
		Messages: []*aisdk.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
}

func TestCreateChatCompletionRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(completionResponse("eventually"))
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	resp, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{
		Messages: []*aisdk.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "eventually", resp.Choices[0].Message.Content)
	assert.EqualValues(t, 3, calls.Load())
}

func TestCreateChatCompletionExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})

	_, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed after 2 retries")
}

func TestCreateChatCompletionClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Request-ID", "req-42")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(aisdk.ErrorResponse{
			Error: aisdk.Error{Message: "bad tool schema", Type: "invalid_request_error"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	_, err := client.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "bad tool schema", apiErr.Message)
	assert.Equal(t, "req-42", apiErr.RequestID)
}
