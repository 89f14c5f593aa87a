package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/bobarin/fala/internal/voices"
)

const detailsEmptyText = "texto vazio"

// SpeechService selects a voice, runs the provider, plays the audio and
// reports the outcome. It never returns an error: every failure becomes a
// canceled SynthesisResult.
type SpeechService struct {
	tts     TTSService
	player  AudioPlayer
	timeout time.Duration
}

// NewSpeechService wires a provider to a player. timeout bounds the provider
// call only; zero means the caller's context is the only deadline.
func NewSpeechService(tts TTSService, player AudioPlayer, timeout time.Duration) *SpeechService {
	if player == nil {
		player = DiscardPlayer{}
	}
	return &SpeechService{tts: tts, player: player, timeout: timeout}
}

// Provider returns the name of the configured TTS provider.
func (s *SpeechService) Provider() string {
	return s.tts.Name()
}

// Speak synthesizes text in the given language and plays it.
func (s *SpeechService) Speak(ctx context.Context, text, language string) *SynthesisResult {
	if language == "" {
		language = voices.DefaultLanguage
	}
	voice := voices.ForLanguage(language)

	var result *SynthesisResult
	if strings.TrimSpace(text) == "" {
		result = canceledResult(&SynthesisError{Reason: CancellationReasonError, Details: detailsEmptyText})
	} else {
		result = s.synthesize(ctx, TTSRequest{Text: text, Language: language, Voice: voice})
	}

	result.Text = text
	result.Language = language
	result.Voice = voice
	result.Provider = s.tts.Name()

	logResult(result)
	return result
}

func (s *SpeechService) synthesize(ctx context.Context, req TTSRequest) *SynthesisResult {
	audio, err := s.generate(ctx, req)
	if err != nil {
		return canceledResult(classifyError(ctx, err))
	}

	// Playback runs on the caller's context: only a disconnect or shutdown stops it.
	if err := s.player.Play(ctx, audio); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return canceledResult(classifyError(ctx, ctxErr))
		}
		return canceledResult(&SynthesisError{
			Reason:  CancellationReasonError,
			Details: "playback failed: " + err.Error(),
		})
	}

	return &SynthesisResult{
		Reason:    ResultReasonSynthesizingAudioCompleted,
		Format:    audio.Format,
		AudioSize: len(audio.AudioData),
	}
}

// generate calls the provider under the synthesis timeout.
func (s *SpeechService) generate(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	audio, err := s.tts.GenerateSpeech(ctx, req)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	return audio, nil
}

func logResult(r *SynthesisResult) {
	if r.Completed() {
		log.Printf("[Speech] Texto sintetizado [%s]", r.Text)
		return
	}

	reason := CancellationReasonError
	if r.Cancellation != nil {
		reason = r.Cancellation.Reason
	}
	log.Printf("[Speech] Sintese de fala cancelada: %s", reason)

	if r.Cancellation != nil && r.Cancellation.Reason == CancellationReasonError && r.Cancellation.ErrorDetails != "" {
		log.Printf("[Speech] Detalhes do Erro: %s", r.Cancellation.ErrorDetails)
		log.Printf("[Speech] Você definiu os valores da chave e da região do recurso de fala?")
	}
}
