package models

import (
	"time"

	"github.com/google/uuid"
)

// Enums
type SynthesisStatus string

const (
	SynthesisStatusQueued    SynthesisStatus = "queued"
	SynthesisStatusRunning   SynthesisStatus = "running"
	SynthesisStatusCompleted SynthesisStatus = "completed"
	SynthesisStatusCanceled  SynthesisStatus = "canceled"
)

// Valid reports whether s is one of the known statuses.
func (s SynthesisStatus) Valid() bool {
	switch s {
	case SynthesisStatusQueued, SynthesisStatusRunning,
		SynthesisStatusCompleted, SynthesisStatusCanceled:
		return true
	}
	return false
}

// Models

// Synthesis is one speech request as recorded in the history table.
type Synthesis struct {
	ID                 uuid.UUID       `json:"id"`
	Text               string          `json:"text"`
	Language           string          `json:"language"`
	Voice              string          `json:"voice"`
	Provider           string          `json:"provider"`
	Status             SynthesisStatus `json:"status"`
	Reason             *string         `json:"reason,omitempty"`              // "SynthesizingAudioCompleted" or "Canceled"
	CancellationReason *string         `json:"cancellation_reason,omitempty"` // "Error", "EndOfStream", "CancelledByUser"
	ErrorDetails       *string         `json:"error_details,omitempty"`
	Message            *string         `json:"message,omitempty"`
	AudioBytes         int             `json:"audio_bytes"`
	CreatedAt          time.Time       `json:"created_at"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	FinishedAt         *time.Time      `json:"finished_at,omitempty"`
}

// SynthesisOutcome is what gets written back when a synthesis finishes.
type SynthesisOutcome struct {
	Status             SynthesisStatus
	Reason             string
	CancellationReason string
	ErrorDetails       string
	Message            string
	AudioBytes         int
}

// API Request/Response types

// StartSpeechRequest is the body of POST /start_speech.
type StartSpeechRequest struct {
	Texto  string `json:"texto"`
	Idioma string `json:"idioma"`
}

type StartSpeechResponse struct {
	Message string `json:"message"`
}

// SpeechRequest is the body of POST /v1/speech and POST /v1/speech/jobs.
type SpeechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type SpeechResponse struct {
	ID                 *uuid.UUID `json:"id,omitempty"`
	Message            string     `json:"message"`
	Reason             string     `json:"reason"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	ErrorDetails       *string    `json:"error_details,omitempty"`
	Language           string     `json:"language"`
	Voice              string     `json:"voice"`
	LanguageSupported  bool       `json:"language_supported"` // false when the default voice stood in
	Provider           string     `json:"provider"`
	AudioBytes         int        `json:"audio_bytes"`
}

type CreateJobResponse struct {
	ID     uuid.UUID       `json:"id"`
	Status SynthesisStatus `json:"status"`
}

type ListSynthesesResponse struct {
	Syntheses []Synthesis `json:"syntheses"`
	Total     int         `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}

type VoicesResponse struct {
	DefaultLanguage string  `json:"default_language"`
	DefaultVoice    string  `json:"default_voice"`
	Voices          []Voice `json:"voices"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Queued   *int64 `json:"queued,omitempty"` // pending async jobs, when the queue is enabled
}

type Voice struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}
