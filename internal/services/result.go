package services

import (
	"fmt"

	"github.com/bobarin/fala/internal/models"
)

// ResultReason is the outcome code of a synthesis request.
type ResultReason string

const (
	ResultReasonSynthesizingAudioCompleted ResultReason = "SynthesizingAudioCompleted"
	ResultReasonCanceled                   ResultReason = "Canceled"
)

// CancellationReason explains why a synthesis was canceled.
type CancellationReason string

const (
	CancellationReasonError           CancellationReason = "Error"
	CancellationReasonEndOfStream     CancellationReason = "EndOfStream"
	CancellationReasonCancelledByUser CancellationReason = "CancelledByUser"
)

// String renders the reason the way it is shown to users,
// e.g. "CancellationReason.Error".
func (r CancellationReason) String() string {
	return "CancellationReason." + string(r)
}

// Messages returned to the front-end.
const (
	MessageCompleted      = "Texto sintetizado com sucesso!"
	messageCanceledFormat = "Sintese de fala cancelada!!! Detalhes: %s"
	messageErrorFormat    = "Erro ao sintetizar texto!!! Detalhes: %s"
)

type CancellationDetails struct {
	Reason       CancellationReason `json:"reason"`
	ErrorDetails string             `json:"error_details,omitempty"`
}

// SynthesisResult is the outcome of one Speak call.
type SynthesisResult struct {
	Reason       ResultReason
	Cancellation *CancellationDetails // nil unless Reason is Canceled
	Text         string
	Language     string
	Voice        string
	Provider     string
	Format       string
	AudioSize    int
}

// Completed reports whether audio was synthesized (and played).
func (r *SynthesisResult) Completed() bool {
	return r.Reason == ResultReasonSynthesizingAudioCompleted
}

// Message maps the result to the human-readable status string.
func (r *SynthesisResult) Message() string {
	if r.Completed() {
		return MessageCompleted
	}

	if r.Cancellation == nil {
		return fmt.Sprintf(messageCanceledFormat, CancellationReasonError)
	}

	if r.Cancellation.Reason == CancellationReasonError && r.Cancellation.ErrorDetails != "" {
		return fmt.Sprintf(messageErrorFormat, r.Cancellation.ErrorDetails)
	}

	return fmt.Sprintf(messageCanceledFormat, r.Cancellation.Reason)
}

// Outcome converts the result into the fields stored in the history table.
func (r *SynthesisResult) Outcome() models.SynthesisOutcome {
	outcome := models.SynthesisOutcome{
		Status:     models.SynthesisStatusCompleted,
		Reason:     string(r.Reason),
		Message:    r.Message(),
		AudioBytes: r.AudioSize,
	}
	if !r.Completed() {
		outcome.Status = models.SynthesisStatusCanceled
		if r.Cancellation != nil {
			outcome.CancellationReason = string(r.Cancellation.Reason)
			outcome.ErrorDetails = r.Cancellation.ErrorDetails
		}
	}
	return outcome
}

func canceledResult(err *SynthesisError) *SynthesisResult {
	return &SynthesisResult{
		Reason: ResultReasonCanceled,
		Cancellation: &CancellationDetails{
			Reason:       err.Reason,
			ErrorDetails: err.Details,
		},
	}
}
