package riskanalyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/safespeak/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/safespeak/pkg/errors"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) (*GeminiBackend, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend, err := NewGeminiBackend(&GeminiConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return backend, srv
}

func envelopeWithText(text string) string {
	raw, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content":      map[string]interface{}{"parts": []map[string]string{{"text": text}}},
			"finishReason": "STOP",
		}},
	})
	return string(raw)
}

func TestNewGeminiBackend(t *testing.T) {
	t.Parallel()

	t.Run("requires api key", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiBackend(&GeminiConfig{}, nil)
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfig, errors.GetCode(err))
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiBackend(nil, nil)
		require.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		b, err := NewGeminiBackend(&GeminiConfig{APIKey: "k"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", b.Model())
	})
}

func TestGenerateJSONSuccess(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotBody geminiRequest
	backend, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(envelopeWithText(`{"risk_score": 10}`)))
	})

	raw, err := backend.GenerateJSON(context.Background(), &GenerateRequest{
		Parts:  []Part{TextPart("instruction"), BlobPart([]byte{0x01}, "image/png")},
		Schema: ProviderSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"risk_score": 10}`, string(raw))

	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMimeType)
	assert.NotNil(t, gotBody.GenerationConfig.ResponseSchema, "schema rides along on every call")
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, "instruction", gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/png", gotBody.Contents[0].Parts[1].InlineData.MimeType)
	assert.Equal(t, "AQ==", gotBody.Contents[0].Parts[1].InlineData.Data)
}

func TestGenerateJSONConcatenatesParts(t *testing.T) {
	t.Parallel()

	backend, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{"parts": []map[string]string{
					{"text": `{"risk_`}, {"text": `score": 5}`},
				}},
				"finishReason": "STOP",
			}},
		})
		w.Write(raw)
	})

	raw, err := backend.GenerateJSON(context.Background(), &GenerateRequest{Parts: []Part{TextPart("x")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"risk_score": 5}`, string(raw))
}

func TestGenerateJSONErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
	}{
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`,
			wantCode: errors.CodeProviderRejected,
		},
		{
			name:     "unauthorized",
			status:   http.StatusForbidden,
			body:     `{"error":{"code":403,"message":"api key not valid"}}`,
			wantCode: errors.CodeProviderRejected,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{}`,
			wantCode: errors.CodeProviderTransport,
		},
		{
			name:     "service unavailable",
			status:   http.StatusServiceUnavailable,
			body:     `{}`,
			wantCode: errors.CodeProviderTransport,
		},
		{
			name:     "gateway timeout",
			status:   http.StatusGatewayTimeout,
			body:     `{}`,
			wantCode: errors.CodeProviderTimeout,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := backend.GenerateJSON(context.Background(), &GenerateRequest{Parts: []Part{TextPart("x")}})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestGenerateJSONRefusals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"blocked prompt", `{"promptFeedback":{"blockReason":"SAFETY"}}`},
		{"no candidates", `{"candidates":[]}`},
		{"non-stop finish", `{"candidates":[{"content":{"parts":[{"text":"x"}]},"finishReason":"SAFETY"}]}`},
		{"empty content", `{"candidates":[{"content":{"parts":[{"text":"  "}]},"finishReason":"STOP"}]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := backend.GenerateJSON(context.Background(), &GenerateRequest{Parts: []Part{TextPart("x")}})
			require.Error(t, err)
			assert.Equal(t, errors.CodeProviderRejected, errors.GetCode(err))
			assert.False(t, errors.IsRetryable(err))
		})
	}
}

func TestGenerateJSONContextDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	backend, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := backend.GenerateJSON(ctx, &GenerateRequest{Parts: []Part{TextPart("x")}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeProviderTimeout, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestGenerateJSONEmptyRequest(t *testing.T) {
	t.Parallel()

	backend, err := NewGeminiBackend(&GeminiConfig{APIKey: "k"}, nil)
	require.NoError(t, err)

	_, err = backend.GenerateJSON(context.Background(), nil)
	require.Error(t, err)
	_, err = backend.GenerateJSON(context.Background(), &GenerateRequest{})
	require.Error(t, err)
}
