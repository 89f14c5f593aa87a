package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzureGenerateSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "application/ssml+xml", r.Header.Get("Content-Type"))
		assert.Equal(t, azureDefaultOutputFormat, r.Header.Get("X-Microsoft-OutputFormat"))

		body, _ := io.ReadAll(r.Body)
		ssml := string(body)
		assert.Contains(t, ssml, `xml:lang="fr-FR"`)
		assert.Contains(t, ssml, `<voice name="fr-FR-HenriNeural">`)
		assert.Contains(t, ssml, "Bonjour &amp; bienvenue &lt;3")

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-audio"))
	}))
	defer srv.Close()

	svc := NewAzureSpeechServiceWithEndpoint("secret", srv.URL, "")
	resp, err := svc.GenerateSpeech(context.Background(), TTSRequest{
		Text:     "Bonjour & bienvenue <3",
		Language: "fr-FR",
		Voice:    "fr-FR-HenriNeural",
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-audio"), resp.AudioData)
	assert.Equal(t, FormatMP3, resp.Format)
	assert.Equal(t, "audio/mpeg", resp.ContentType)
}

func TestAzureGenerateSpeechErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewAzureSpeechServiceWithEndpoint("bad-key", srv.URL, "")
	_, err := svc.GenerateSpeech(context.Background(), TTSRequest{Text: "oi", Language: "pt-BR", Voice: "pt-BR-AntonioNeural"})

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, CancellationReasonError, synthErr.Reason)
	assert.Equal(t, "Azure returned status 401: Unauthorized", synthErr.Details)
}

func TestAzureGenerateSpeechEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewAzureSpeechServiceWithEndpoint("key", srv.URL, "")
	_, err := svc.GenerateSpeech(context.Background(), TTSRequest{Text: "oi", Language: "pt-BR", Voice: "pt-BR-AntonioNeural"})

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, CancellationReasonEndOfStream, synthErr.Reason)
}

func TestAzureGenerateSpeechCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewAzureSpeechServiceWithEndpoint("key", srv.URL, "")
	_, err := svc.GenerateSpeech(ctx, TTSRequest{Text: "oi", Language: "pt-BR", Voice: "pt-BR-AntonioNeural"})

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, CancellationReasonCancelledByUser, synthErr.Reason)
}

func TestAzureEndpoint(t *testing.T) {
	assert.Equal(t, "https://brazilsouth.tts.speech.microsoft.com/cognitiveservices/v1", azureRegionEndpoint("brazilsouth"))

	svc := NewAzureSpeechService("k", "eastus", "")
	assert.Equal(t, "https://eastus.tts.speech.microsoft.com/cognitiveservices/v1", svc.endpoint)
	assert.Equal(t, azureDefaultOutputFormat, svc.outputFormat)
}

func TestAzureFormatMapping(t *testing.T) {
	assert.Equal(t, FormatMP3, azureFormat("audio-16khz-32kbitrate-mono-mp3"))
	assert.Equal(t, FormatPCM, azureFormat("raw-24khz-16bit-mono-pcm"))
	assert.Equal(t, "pcm_s16le_16000", azureFormat("raw-16khz-16bit-mono-pcm"))
	assert.Equal(t, "pcm_s16le_22050", azureFormat("raw-22050hz-16bit-mono-pcm"))
	assert.Equal(t, "raw-8khz-8bit-mono-mulaw", azureFormat("raw-8khz-8bit-mono-mulaw"))
	assert.Equal(t, "riff-24khz-16bit-mono-pcm", azureFormat("riff-24khz-16bit-mono-pcm"))
	assert.Equal(t, "audio/wav", azureContentType("riff-24khz-16bit-mono-pcm"))
	assert.Equal(t, "audio/ogg", azureContentType("ogg-24khz-16bit-mono-opus"))
}

func TestBuildSSMLEscapesAttributes(t *testing.T) {
	ssml, err := buildSSML("a", `x"y`, "v")
	require.NoError(t, err)
	assert.False(t, strings.Contains(ssml, `x"y`))
	assert.Contains(t, ssml, "x&#34;y")
}
