package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/bobarin/fala/internal/db"
	"github.com/bobarin/fala/internal/models"
	"github.com/bobarin/fala/internal/queue"
	"github.com/bobarin/fala/internal/services"
	"github.com/bobarin/fala/internal/voices"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies; the text is the only large field.
const maxBodyBytes = 64 << 10

// Speaker runs a synthesis and reports its outcome.
type Speaker interface {
	Speak(ctx context.Context, text, language string) *services.SynthesisResult
	Provider() string
}

// HistoryStore persists synthesis records. Implemented by *db.DB.
type HistoryStore interface {
	CreateSynthesis(ctx context.Context, s *models.Synthesis) error
	CompleteSynthesis(ctx context.Context, id uuid.UUID, outcome models.SynthesisOutcome) error
	GetSynthesis(ctx context.Context, id uuid.UUID) (*models.Synthesis, error)
	ListSyntheses(ctx context.Context, status string, limit, offset int) ([]models.Synthesis, error)
	CountSyntheses(ctx context.Context, status string) (int, error)
}

// JobQueue accepts async synthesis jobs. Implemented by *queue.Queue.
type JobQueue interface {
	EnqueueSynthesis(ctx context.Context, id uuid.UUID, text, language string) error
	Length(ctx context.Context, queueName string) (int64, error)
}

type Handler struct {
	speech  Speaker
	history HistoryStore // nil when DATABASE_URL is unset
	jobs    JobQueue     // nil when REDIS_URL is unset
	pages   *pages
}

// NewHandler builds the HTTP handlers. history and jobs are optional.
func NewHandler(speech Speaker, history HistoryStore, jobs JobQueue) *Handler {
	return &Handler{
		speech:  speech,
		history: history,
		jobs:    jobs,
		pages:   loadPages(),
	}
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, "index.html", indexData())
}

// Example handles GET /exemplo
func (h *Handler) Example(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, "exemplo.html", exampleData())
}

// StartSpeech handles POST /start_speech
// Body: {"texto": "...", "idioma": "pt-BR"}. Missing fields default to "" and pt-BR.
func (h *Handler) StartSpeech(w http.ResponseWriter, r *http.Request) {
	var req models.StartSpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Idioma == "" {
		req.Idioma = voices.DefaultLanguage
	}

	result, _ := h.speak(r.Context(), req.Texto, req.Idioma)
	message := result.Message()

	log.Printf("Mensagem: %s", message)
	log.Println("---------------------------------------------------")

	respondJSON(w, http.StatusOK, models.StartSpeechResponse{Message: message})
}

// Speak handles POST /v1/speech
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	var req models.SpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Language == "" {
		req.Language = voices.DefaultLanguage
	}

	result, id := h.speak(r.Context(), req.Text, req.Language)
	respondJSON(w, http.StatusOK, buildSpeechResponse(result, id))
}

// CreateSpeechJob handles POST /v1/speech/jobs
func (h *Handler) CreateSpeechJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil || h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "Async synthesis is disabled (requires DATABASE_URL and REDIS_URL)")
		return
	}

	var req models.SpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Language == "" {
		req.Language = voices.DefaultLanguage
	}

	synthesis := &models.Synthesis{
		ID:       uuid.New(),
		Text:     req.Text,
		Language: req.Language,
		Voice:    voices.ForLanguage(req.Language),
		Provider: h.speech.Provider(),
		Status:   models.SynthesisStatusQueued,
	}

	if err := h.history.CreateSynthesis(r.Context(), synthesis); err != nil {
		log.Printf("[API] Failed to create synthesis: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create synthesis")
		return
	}

	if err := h.jobs.EnqueueSynthesis(r.Context(), synthesis.ID, synthesis.Text, synthesis.Language); err != nil {
		log.Printf("[API] Failed to enqueue synthesis %s: %v", synthesis.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, models.CreateJobResponse{
		ID:     synthesis.ID,
		Status: synthesis.Status,
	})
}

// ListSyntheses handles GET /v1/syntheses
// Query params:
//   - status: filter by status (queued, running, completed, canceled)
//   - limit:  max results per page (default 20, max 100)
//   - offset: number of results to skip (default 0)
func (h *Handler) ListSyntheses(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "Synthesis history is disabled (requires DATABASE_URL)")
		return
	}

	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && !models.SynthesisStatus(statusFilter).Valid() {
		respondError(w, http.StatusBadRequest, "Invalid status filter. Allowed: queued, running, completed, canceled")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	total, err := h.history.CountSyntheses(r.Context(), statusFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count syntheses")
		return
	}

	syntheses, err := h.history.ListSyntheses(r.Context(), statusFilter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list syntheses")
		return
	}

	respondJSON(w, http.StatusOK, models.ListSynthesesResponse{
		Syntheses: syntheses,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

// GetSynthesis handles GET /v1/syntheses/{id}
func (h *Handler) GetSynthesis(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "Synthesis history is disabled (requires DATABASE_URL)")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid synthesis ID")
		return
	}

	synthesis, err := h.history.GetSynthesis(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Synthesis not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get synthesis")
		return
	}

	respondJSON(w, http.StatusOK, synthesis)
}

// ListVoices handles GET /v1/voices
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	all := voices.All()
	resp := models.VoicesResponse{
		DefaultLanguage: voices.DefaultLanguage,
		DefaultVoice:    voices.DefaultVoice,
		Voices:          make([]models.Voice, 0, len(all)),
	}
	for _, v := range all {
		resp.Voices = append(resp.Voices, models.Voice{Language: v.Language, Name: v.Name})
	}
	respondJSON(w, http.StatusOK, resp)
}

// Health handles GET /health. With async jobs enabled it also reports the
// queue backlog and turns degraded when Redis is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{Status: "ok", Provider: h.speech.Provider()}

	if h.jobs != nil {
		n, err := h.jobs.Length(r.Context(), queue.QueueSynthesize)
		if err != nil {
			log.Printf("[API] Health: failed to read queue length: %v", err)
			resp.Status = "degraded"
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Queued = &n
	}

	respondJSON(w, http.StatusOK, resp)
}

// Helper methods

// speak runs a synchronous synthesis and records it when history is enabled.
// The returned id is nil when nothing was recorded.
func (h *Handler) speak(ctx context.Context, text, language string) (*services.SynthesisResult, *uuid.UUID) {
	var id *uuid.UUID
	if h.history != nil {
		synthesis := &models.Synthesis{
			ID:       uuid.New(),
			Text:     text,
			Language: language,
			Voice:    voices.ForLanguage(language),
			Provider: h.speech.Provider(),
			Status:   models.SynthesisStatusRunning,
		}
		if err := h.history.CreateSynthesis(ctx, synthesis); err != nil {
			log.Printf("[API] Failed to record synthesis: %v", err)
		} else {
			id = &synthesis.ID
		}
	}

	result := h.speech.Speak(ctx, text, language)

	if id != nil {
		if err := h.history.CompleteSynthesis(context.WithoutCancel(ctx), *id, result.Outcome()); err != nil {
			log.Printf("[API] Failed to store outcome of synthesis %s: %v", *id, err)
		}
	}

	return result, id
}

func buildSpeechResponse(result *services.SynthesisResult, id *uuid.UUID) models.SpeechResponse {
	resp := models.SpeechResponse{
		ID:                id,
		Message:           result.Message(),
		Reason:            string(result.Reason),
		Language:          result.Language,
		Voice:             result.Voice,
		LanguageSupported: voices.Supported(result.Language),
		Provider:          result.Provider,
		AudioBytes:        result.AudioSize,
	}
	if result.Cancellation != nil {
		reason := string(result.Cancellation.Reason)
		resp.CancellationReason = &reason
		if result.Cancellation.ErrorDetails != "" {
			details := result.Cancellation.ErrorDetails
			resp.ErrorDetails = &details
		}
	}
	return resp
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
