package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateChatCompletion(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/chat/completions" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("expected bearer auth, got %q", r.Header.Get("Authorization"))
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
			}

			var req ChatCompletionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if req.Model != "gpt-4o-mini" {
				t.Errorf("model = %s", req.Model)
			}
			if req.MaxTokens != 300 {
				t.Errorf("max_tokens = %d", req.MaxTokens)
			}
			if req.Temperature == nil || *req.Temperature != 0.7 {
				t.Errorf("temperature = %v", req.Temperature)
			}
			if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem || req.Messages[1].Role != RoleUser {
				t.Errorf("unexpected messages: %+v", req.Messages)
			}

			json.NewEncoder(w).Encode(ChatCompletionResponse{
				ID:     "chatcmpl-123",
				Object: "chat.completion",
				Model:  "gpt-4o-mini",
				Choices: []Choice{
					{Index: 0, Message: Message{Role: RoleAssistant, Content: "  Bu hafta sakin geçti.  "}, FinishReason: "stop"},
				},
				Usage: Usage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160},
			})
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL))

		temperature := 0.7
		resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
			Model:       "gpt-4o-mini",
			MaxTokens:   300,
			Temperature: &temperature,
			Messages: []Message{
				{Role: RoleSystem, Content: "system"},
				{Role: RoleUser, Content: "user"},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.ID != "chatcmpl-123" {
			t.Errorf("ID = %s", resp.ID)
		}
		if resp.Usage.CompletionTokens != 40 {
			t.Errorf("CompletionTokens = %d", resp.Usage.CompletionTokens)
		}
		if resp.FirstContent() != "  Bu hafta sakin geçti.  " {
			t.Errorf("FirstContent() = %q", resp.FirstContent())
		}
	})

	t.Run("API error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
		}))
		defer server.Close()

		client := NewClient("bad-key", WithBaseURL(server.URL))
		_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt-4o-mini"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("StatusCode = %d", apiErr.StatusCode)
		}
		if apiErr.Detail.Message != "Incorrect API key provided" {
			t.Errorf("Detail.Message = %q", apiErr.Detail.Message)
		}
		if err.Error() != apiErr.Body {
			t.Errorf("error text = %q, want the raw body", err.Error())
		}
	})

	t.Run("non JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream unavailable"))
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL))
		_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt-4o-mini"})

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Body != "upstream unavailable" {
			t.Errorf("Body = %q", apiErr.Body)
		}
	})

	t.Run("empty error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL))
		_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt-4o-mini"})
		if err == nil || err.Error() != "status 503" {
			t.Errorf("error = %v, want status 503", err)
		}
	})

	t.Run("custom HTTP client", func(t *testing.T) {
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ChatCompletionResponse{
				Choices: []Choice{{Message: Message{Role: RoleAssistant, Content: "tls"}}},
			})
		}))
		defer server.Close()

		// server.Client trusts the test certificate; the default client would not
		client := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
		resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt-4o-mini"})
		if err != nil {
			t.Fatalf("CreateChatCompletion failed: %v", err)
		}
		if resp.FirstContent() != "tls" {
			t.Errorf("FirstContent() = %q", resp.FirstContent())
		}
	})

	t.Run("malformed success body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL))
		_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt-4o-mini"})
		if err == nil || !strings.Contains(err.Error(), "failed to unmarshal response") {
			t.Errorf("expected unmarshal error, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient("test-key", WithBaseURL(server.URL), WithTimeout(20*time.Millisecond))
		_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt-4o-mini"})
		if err == nil || !strings.Contains(err.Error(), "failed to send request") {
			t.Errorf("expected send error, got %v", err)
		}
	})
}

func TestFirstContent_NoChoices(t *testing.T) {
	resp := &ChatCompletionResponse{}
	if got := resp.FirstContent(); got != "" {
		t.Errorf("FirstContent() = %q, want empty", got)
	}
}
