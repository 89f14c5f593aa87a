package services

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Gemini Text-to-Speech Service
// Gemini TTS models answer with inline 24kHz 16-bit mono PCM. The language
// code is passed through SpeechConfig; the voice is one of Gemini's prebuilt
// voices, not the Azure table voice.
// ---------------------------------------------------------------------------

const (
	geminiDefaultTTSModel = "gemini-2.5-flash-preview-tts"
	geminiDefaultVoice    = "Kore"
)

type GeminiService struct {
	client *genai.Client
	model  string
	voice  string
}

// Ensure GeminiService implements TTSService at compile time.
var _ TTSService = (*GeminiService)(nil)

func NewGeminiService(ctx context.Context, apiKey, model, voice string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if model == "" {
		model = geminiDefaultTTSModel
	}
	if voice == "" {
		voice = geminiDefaultVoice
	}

	return &GeminiService{client: client, model: model, voice: voice}, nil
}

func (s *GeminiService) Name() string { return "gemini" }

// GenerateSpeech asks Gemini for an audio-only response and returns the PCM payload.
func (s *GeminiService) GenerateSpeech(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: req.Language,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}

	log.Printf("[Gemini] Generating speech (voice=%s, model=%s, lang=%s, textLen=%d)", s.voice, s.model, req.Language, len(req.Text))

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(req.Text), config)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("Gemini request failed: %w", err))
	}

	audioData := geminiAudio(resp)
	if len(audioData) == 0 {
		return nil, &SynthesisError{Reason: CancellationReasonEndOfStream}
	}

	log.Printf("[Gemini] Speech generated (%d bytes)", len(audioData))

	return &TTSResponse{
		AudioData:   audioData,
		Format:      FormatPCM,
		ContentType: "audio/L16;rate=24000",
	}, nil
}

// geminiAudio concatenates every inline audio part of the first candidate.
func geminiAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}

	var audio []byte
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil {
			audio = append(audio, part.InlineData.Data...)
		}
	}
	return audio
}
