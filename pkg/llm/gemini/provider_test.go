package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pdf-rag-be/pkg/ragerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProvider_Availability(t *testing.T) {
	assert.False(t, NewGeminiProvider("", "", time.Second).IsAvailable(context.Background()))
	assert.True(t, NewGeminiProvider("key", "", time.Second).IsAvailable(context.Background()))
}

func TestGeminiProvider_GenerateResponse(t *testing.T) {
	var path, apiKey string
	var body GeminiChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"there"}],"role":"model"}}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("secret", "", time.Second)
	p.BaseURL = srv.URL

	got, err := p.GenerateResponse(context.Background(), "hi?", "some context")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", got)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", path)
	assert.Equal(t, "secret", apiKey)
	require.Len(t, body.Contents, 1)
	assert.Contains(t, body.Contents[0].Parts[0].Text, "Context:\nsome context\n")
}

func TestGeminiProvider_GenerateResponse_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"x"}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"empty text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewGeminiProvider("secret", "", time.Second)
			p.BaseURL = srv.URL
			_, err := p.GenerateResponse(context.Background(), "q", "")
			assert.ErrorIs(t, err, ragerror.ErrGenerationFailed)
		})
	}

	_, err := NewGeminiProvider("", "", time.Second).GenerateResponse(context.Background(), "q", "")
	assert.ErrorIs(t, err, ragerror.ErrGenerationFailed)
}
