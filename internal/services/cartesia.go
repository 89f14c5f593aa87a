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

const (
	CartesiaAPIVersion = "2024-06-10"
	CartesiaDefaultURL = "https://api.cartesia.ai"

	// Default voice ID (multilingual)
	CartesiaDefaultVoiceID = "a0e99841-438c-4a64-b679-ae501e7d6091"

	cartesiaModel = "sonic-multilingual"
)

type CartesiaService struct {
	apiKey         string
	apiURL         string
	apiVersion     string
	defaultVoiceID string
	client         *http.Client
}

// Ensure CartesiaService implements TTSService at compile time.
var _ TTSService = (*CartesiaService)(nil)

// NewCartesiaService creates a Cartesia service. Empty apiURL and voiceID use the defaults.
func NewCartesiaService(apiKey, apiURL, voiceID string) *CartesiaService {
	if apiURL == "" {
		apiURL = CartesiaDefaultURL
	}
	if voiceID == "" {
		voiceID = CartesiaDefaultVoiceID
	}
	return &CartesiaService{
		apiKey:         apiKey,
		apiURL:         strings.TrimRight(apiURL, "/"),
		apiVersion:     CartesiaAPIVersion,
		defaultVoiceID: voiceID,
		client:         &http.Client{Timeout: 60 * time.Second},
	}
}

// CartesiaRequest matches the Cartesia /tts/bytes request body
type CartesiaRequest struct {
	ModelID      string                 `json:"model_id"`
	Transcript   string                 `json:"transcript"`
	Voice        CartesiaVoiceSpecifier `json:"voice"`
	Language     *string                `json:"language,omitempty"`
	OutputFormat CartesiaOutputFormat   `json:"output_format"`
}

type CartesiaVoiceSpecifier struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type CartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding,omitempty"`
	SampleRate int    `json:"sample_rate"`
	BitRate    int    `json:"bit_rate,omitempty"`
}

func (s *CartesiaService) Name() string { return "cartesia" }

// GenerateSpeech generates MP3 audio from text using Cartesia TTS.
func (s *CartesiaService) GenerateSpeech(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	reqBody := CartesiaRequest{
		ModelID:    cartesiaModel,
		Transcript: req.Text,
		Voice: CartesiaVoiceSpecifier{
			Mode: "id",
			ID:   s.defaultVoiceID,
		},
		OutputFormat: CartesiaOutputFormat{
			Container:  "mp3",
			SampleRate: 44100,
			BitRate:    192000,
		},
	}

	if lang := baseLanguage(req.Language); lang != "" {
		reqBody.Language = &lang
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &SynthesisError{Reason: CancellationReasonError, Details: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	url := fmt.Sprintf("%s/tts/bytes", s.apiURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &SynthesisError{Reason: CancellationReasonError, Details: fmt.Sprintf("failed to create request: %v", err)}
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cartesia-Version", s.apiVersion)

	log.Printf("[Cartesia] Generating speech (voiceID=%s, lang=%s, textLen=%d)", s.defaultVoiceID, req.Language, len(req.Text))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("Cartesia request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &SynthesisError{
			Reason:  CancellationReasonError,
			Details: fmt.Sprintf("Cartesia returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("failed to read audio: %w", err))
	}

	if len(audioData) == 0 {
		return nil, &SynthesisError{Reason: CancellationReasonEndOfStream}
	}

	return &TTSResponse{
		AudioData:   audioData,
		Format:      FormatMP3,
		ContentType: "audio/mpeg",
	}, nil
}
