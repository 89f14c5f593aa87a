package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// TTSService: common interface for text-to-speech providers
// Azure is the default; OpenAI, Gemini, ElevenLabs and Cartesia implement the
// same interface so the speech service can use whichever is configured.
// ---------------------------------------------------------------------------

// Audio formats returned by the providers.
const (
	FormatMP3 = "mp3"
	FormatPCM = "pcm_s16le_24000" // raw 16-bit little-endian mono, 24kHz

	pcmFormatPrefix = "pcm_s16le_"
)

// pcmFormat names raw 16-bit little-endian mono audio at the given sample rate.
func pcmFormat(sampleRate int) string {
	return pcmFormatPrefix + strconv.Itoa(sampleRate)
}

// pcmSampleRate returns the sample rate of a pcmFormat value.
func pcmSampleRate(format string) (int, bool) {
	rate, ok := strings.CutPrefix(format, pcmFormatPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rate)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// TTSRequest is what every provider receives.
type TTSRequest struct {
	Text     string
	Language string // e.g. "pt-BR"
	Voice    string // vendor voice identifier, e.g. "pt-BR-AntonioNeural"
}

// TTSResponse is the common response type from any TTS provider.
type TTSResponse struct {
	AudioData   []byte
	Format      string
	ContentType string
}

// TTSService is the interface that any TTS provider must implement.
type TTSService interface {
	Name() string

	// GenerateSpeech converts text to audio. Failures should be returned as
	// *SynthesisError so they can be reported as cancellation details.
	GenerateSpeech(ctx context.Context, req TTSRequest) (*TTSResponse, error)
}

// SynthesisError is a provider failure carrying the cancellation reason the
// caller should report.
type SynthesisError struct {
	Reason  CancellationReason
	Details string
}

func (e *SynthesisError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("synthesis canceled: %s", e.Reason)
	}
	return fmt.Sprintf("synthesis canceled: %s: %s", e.Reason, e.Details)
}

// classifyError turns any provider error into a *SynthesisError. Context
// cancellation maps to CancelledByUser; everything else is an Error.
func classifyError(ctx context.Context, err error) *SynthesisError {
	var synthErr *SynthesisError
	if errors.As(err, &synthErr) {
		return synthErr
	}
	if errors.Is(err, context.Canceled) || (ctx != nil && errors.Is(ctx.Err(), context.Canceled)) {
		return &SynthesisError{Reason: CancellationReasonCancelledByUser}
	}
	return &SynthesisError{Reason: CancellationReasonError, Details: err.Error()}
}
