package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewOpenAIServiceWithConfig(cfg, "", "")
}

func TestOpenAIGenerateSpeech(t *testing.T) {
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tts-1", body["model"])
		assert.Equal(t, "alloy", body["voice"])
		assert.Equal(t, "Olá mundo", body["input"])
		assert.Equal(t, "mp3", body["response_format"])

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	})

	resp, err := svc.GenerateSpeech(context.Background(), TTSRequest{Text: "Olá mundo", Language: "pt-BR", Voice: "pt-BR-AntonioNeural"})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), resp.AudioData)
	assert.Equal(t, FormatMP3, resp.Format)
}

func TestOpenAIGenerateSpeechAPIError(t *testing.T) {
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})

	_, err := svc.GenerateSpeech(context.Background(), TTSRequest{Text: "hi", Language: "en-US"})

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, CancellationReasonError, synthErr.Reason)
	assert.Contains(t, synthErr.Details, "401")
	assert.Contains(t, synthErr.Details, "Incorrect API key provided")
}

func TestOpenAIDefaults(t *testing.T) {
	svc := NewOpenAIService("k", "", "")
	assert.Equal(t, "openai", svc.Name())
	assert.Equal(t, openAIDefaultModel, svc.model)
	assert.Equal(t, openAIDefaultVoice, svc.voice)

	svc = NewOpenAIService("k", "tts-1-hd", "nova")
	assert.Equal(t, "tts-1-hd", svc.model)
	assert.Equal(t, "nova", svc.voice)
}
