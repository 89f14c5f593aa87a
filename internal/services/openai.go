package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI Text-to-Speech Service
// OpenAI voices are language-agnostic, so the Azure voice from the table is
// ignored and the configured OpenAI voice speaks every language.
// ---------------------------------------------------------------------------

const (
	openAIDefaultModel = "tts-1"
	openAIDefaultVoice = "alloy"
)

type OpenAIService struct {
	client *openai.Client
	model  string
	voice  string
}

// Ensure OpenAIService implements TTSService at compile time.
var _ TTSService = (*OpenAIService)(nil)

func NewOpenAIService(apiKey, model, voice string) *OpenAIService {
	return NewOpenAIServiceWithConfig(openai.DefaultConfig(apiKey), model, voice)
}

// NewOpenAIServiceWithConfig lets callers override the base URL or HTTP client.
func NewOpenAIServiceWithConfig(cfg openai.ClientConfig, model, voice string) *OpenAIService {
	if model == "" {
		model = openAIDefaultModel
	}
	if voice == "" {
		voice = openAIDefaultVoice
	}
	return &OpenAIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		voice:  voice,
	}
}

func (s *OpenAIService) Name() string { return "openai" }

// GenerateSpeech converts text to MP3 audio with OpenAI's speech endpoint.
func (s *OpenAIService) GenerateSpeech(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	log.Printf("[OpenAI] Generating speech (voice=%s, model=%s, lang=%s, textLen=%d)", s.voice, s.model, req.Language, len(req.Text))

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, classifyError(ctx, openAIError(err))
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("failed to read OpenAI audio response: %w", err))
	}

	if len(audioData) == 0 {
		return nil, &SynthesisError{Reason: CancellationReasonEndOfStream}
	}

	log.Printf("[OpenAI] Speech generated (%d bytes)", len(audioData))

	return &TTSResponse{
		AudioData:   audioData,
		Format:      FormatMP3,
		ContentType: "audio/mpeg",
	}, nil
}

// openAIError flattens the client's typed errors into a readable message.
func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("OpenAI returned status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("OpenAI returned status %d: %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("OpenAI request failed: %w", err)
}
