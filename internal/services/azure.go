package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Azure Speech Service
// Uses the Azure text-to-speech REST API: the request body is SSML naming the
// neural voice, the response body IS the audio file.
// ---------------------------------------------------------------------------

const (
	azureDefaultOutputFormat = "audio-24khz-48kbitrate-mono-mp3"
	azureUserAgent           = "fala"
	azureErrorBodyLimit      = 512
)

// AzureSpeechService handles text-to-speech via Azure Cognitive Services.
type AzureSpeechService struct {
	apiKey       string
	endpoint     string
	outputFormat string
	client       *http.Client
}

// Ensure AzureSpeechService implements TTSService at compile time.
var _ TTSService = (*AzureSpeechService)(nil)

// NewAzureSpeechService creates an Azure TTS service for the given key/region pair.
func NewAzureSpeechService(apiKey, region, outputFormat string) *AzureSpeechService {
	return NewAzureSpeechServiceWithEndpoint(apiKey, azureRegionEndpoint(region), outputFormat)
}

// NewAzureSpeechServiceWithEndpoint points the service at a custom endpoint
// (sovereign clouds, private links, tests). An empty outputFormat uses the
// 24kHz mono MP3 default.
func NewAzureSpeechServiceWithEndpoint(apiKey, endpoint, outputFormat string) *AzureSpeechService {
	if outputFormat == "" {
		outputFormat = azureDefaultOutputFormat
	}
	return &AzureSpeechService{
		apiKey:       apiKey,
		endpoint:     endpoint,
		outputFormat: outputFormat,
		client:       &http.Client{Timeout: 90 * time.Second},
	}
}

// azureRegionEndpoint returns the TTS REST endpoint of an Azure region.
func azureRegionEndpoint(region string) string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region)
}

func (s *AzureSpeechService) Name() string { return "azure" }

// GenerateSpeech converts text to speech using the configured Azure voice.
func (s *AzureSpeechService) GenerateSpeech(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	ssml, err := buildSSML(req.Text, req.Language, req.Voice)
	if err != nil {
		return nil, &SynthesisError{Reason: CancellationReasonError, Details: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, &SynthesisError{Reason: CancellationReasonError, Details: fmt.Sprintf("failed to create Azure request: %v", err)}
	}

	httpReq.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", s.outputFormat)
	httpReq.Header.Set("User-Agent", azureUserAgent)

	log.Printf("[Azure] Generating speech (voice=%s, lang=%s, textLen=%d)", req.Voice, req.Language, len(req.Text))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("Azure request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, azureErrorBodyLimit))
		return nil, &SynthesisError{
			Reason:  CancellationReasonError,
			Details: azureErrorDetails(resp.StatusCode, body),
		}
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("failed to read Azure audio response: %w", err))
	}

	if len(audioData) == 0 {
		return nil, &SynthesisError{Reason: CancellationReasonEndOfStream}
	}

	log.Printf("[Azure] Speech generated (%d bytes)", len(audioData))

	return &TTSResponse{
		AudioData:   audioData,
		Format:      azureFormat(s.outputFormat),
		ContentType: azureContentType(s.outputFormat),
	}, nil
}

// buildSSML wraps text in a single-voice SSML document.
func buildSSML(text, language, voice string) (string, error) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return "", fmt.Errorf("failed to escape text: %w", err)
	}

	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		xmlAttr(language), xmlAttr(voice), escaped.String(),
	), nil
}

func xmlAttr(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func azureErrorDetails(status int, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Sprintf("Azure returned status %d: %s", status, msg)
}

func azureFormat(outputFormat string) string {
	if strings.HasSuffix(outputFormat, "mp3") {
		return FormatMP3
	}
	if rate, ok := azureRawPCMSampleRate(outputFormat); ok {
		return pcmFormat(rate)
	}
	return outputFormat
}

var azureRawPCM = regexp.MustCompile(`^raw-(\d+)(khz|hz)-16bit-mono-pcm$`)

// azureRawPCMSampleRate parses headerless PCM output formats such as
// "raw-16khz-16bit-mono-pcm" or "raw-22050hz-16bit-mono-pcm".
func azureRawPCMSampleRate(outputFormat string) (int, bool) {
	m := azureRawPCM.FindStringSubmatch(outputFormat)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	if m[2] == "khz" {
		n *= 1000
	}
	return n, true
}

func azureContentType(outputFormat string) string {
	switch {
	case strings.HasSuffix(outputFormat, "mp3"):
		return "audio/mpeg"
	case strings.HasPrefix(outputFormat, "riff-"):
		return "audio/wav"
	case strings.HasPrefix(outputFormat, "ogg-"):
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
