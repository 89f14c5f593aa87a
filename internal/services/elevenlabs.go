package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech Service
// Model: eleven_flash_v2_5 (Flash v2.5, 32 languages). The request carries the
// ISO 639-1 part of the language code so multilingual voices pick the accent.
// ---------------------------------------------------------------------------

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsDefaultModel = "eleven_flash_v2_5"
	elevenLabsDefaultVoice = "pNInz6obpgDQGcFmaJgB"
	elevenLabsOutputFormat = "mp3_44100_128"
)

// ElevenLabsService handles text-to-speech via ElevenLabs API.
type ElevenLabsService struct {
	apiKey  string
	baseURL string
	voiceID string
	modelID string
	client  *http.Client
}

// Ensure ElevenLabsService implements TTSService at compile time.
var _ TTSService = (*ElevenLabsService)(nil)

// NewElevenLabsService creates an ElevenLabs service. An empty voiceID uses the default voice.
func NewElevenLabsService(apiKey, voiceID string) *ElevenLabsService {
	return NewElevenLabsServiceWithURL(apiKey, elevenLabsBaseURL, voiceID)
}

func NewElevenLabsServiceWithURL(apiKey, baseURL, voiceID string) *ElevenLabsService {
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	return &ElevenLabsService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		voiceID: voiceID,
		modelID: elevenLabsDefaultModel,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type elevenLabsRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	LanguageCode string `json:"language_code,omitempty"`
}

func (s *ElevenLabsService) Name() string { return "elevenlabs" }

// GenerateSpeech converts text to speech using ElevenLabs.
func (s *ElevenLabsService) GenerateSpeech(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	jsonData, err := json.Marshal(elevenLabsRequest{
		Text:         req.Text,
		ModelID:      s.modelID,
		LanguageCode: baseLanguage(req.Language),
	})
	if err != nil {
		return nil, &SynthesisError{Reason: CancellationReasonError, Details: fmt.Sprintf("failed to marshal ElevenLabs request: %v", err)}
	}

	// POST /v1/text-to-speech/{voice_id}?output_format=mp3_44100_128
	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", s.baseURL, s.voiceID, elevenLabsOutputFormat)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &SynthesisError{Reason: CancellationReasonError, Details: fmt.Sprintf("failed to create ElevenLabs request: %v", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", s.apiKey)

	log.Printf("[ElevenLabs] Generating speech (voiceID=%s, model=%s, lang=%s, textLen=%d)", s.voiceID, s.modelID, req.Language, len(req.Text))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("ElevenLabs request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &SynthesisError{
			Reason:  CancellationReasonError,
			Details: fmt.Sprintf("ElevenLabs returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	// The response body IS the audio file
	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("failed to read ElevenLabs audio response: %w", err))
	}

	if len(audioData) == 0 {
		return nil, &SynthesisError{Reason: CancellationReasonEndOfStream}
	}

	log.Printf("[ElevenLabs] Speech generated (%d bytes)", len(audioData))

	return &TTSResponse{
		AudioData:   audioData,
		Format:      FormatMP3,
		ContentType: "audio/mpeg",
	}, nil
}

// baseLanguage turns "pt-BR" into "pt".
func baseLanguage(code string) string {
	if i := strings.IndexByte(code, '-'); i > 0 {
		return strings.ToLower(code[:i])
	}
	return strings.ToLower(code)
}
