package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "study_tutor_go_backend/internal/errors"

	"github.com/stretchr/testify/assert"
)

func newTestLLMClient(serverURL string) *LLMClient {
	return NewLLMClient(serverURL, "test-key", "gpt-4o-mini", 1024, 0.7)
}

func TestCompleteParsesProviderResponse(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Photosynthesis converts light into chemical energy."}}],
			"usage": {"total_tokens": 57}
		}`))
	}))
	defer server.Close()

	client := newTestLLMClient(server.URL)
	result, err := client.Complete(context.Background(), []ChatMessage{
		{Role: "user", Content: "Explain photosynthesis"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", result.Content)
	assert.Equal(t, 57, result.TotalTokens)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Len(t, gotReq.Messages, 1)
}

func TestCompleteClassifiesProviderStatuses(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		errType   apperrors.ErrorType
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, apperrors.ErrorTypeProviderRateLimit, true},
		{"payment required", http.StatusPaymentRequired, apperrors.ErrorTypePaymentRequired, false},
		{"unauthorized", http.StatusUnauthorized, apperrors.ErrorTypeAuthentication, false},
		{"forbidden", http.StatusForbidden, apperrors.ErrorTypeAuthentication, false},
		{"server error", http.StatusInternalServerError, apperrors.ErrorTypeNetwork, true},
		{"unexpected status", http.StatusTeapot, apperrors.ErrorTypeUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"error": "nope"}`))
			}))
			defer server.Close()

			_, err := newTestLLMClient(server.URL).Complete(context.Background(), []ChatMessage{
				{Role: "user", Content: "hello"},
			})

			assert.Error(t, err)
			customErr, ok := err.(*apperrors.CustomError)
			assert.True(t, ok)
			assert.Equal(t, tc.errType, customErr.Type)
			assert.Equal(t, tc.retryable, customErr.Retryable())
		})
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [], "usage": {"total_tokens": 0}}`))
	}))
	defer server.Close()

	_, err := newTestLLMClient(server.URL).Complete(context.Background(), []ChatMessage{
		{Role: "user", Content: "hello"},
	})

	assert.Error(t, err)
	customErr, ok := err.(*apperrors.CustomError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeUnknown, customErr.Type)
}

func TestCompleteWrapsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestLLMClient(server.URL).Complete(context.Background(), []ChatMessage{
		{Role: "user", Content: "hello"},
	})

	assert.Error(t, err)
	customErr, ok := err.(*apperrors.CustomError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNetwork, customErr.Type)
	assert.True(t, customErr.Retryable())
}
