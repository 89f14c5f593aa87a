package worker

import (
	"context"
	"log"
	"time"

	"github.com/bobarin/fala/internal/models"
	"github.com/bobarin/fala/internal/queue"
	"github.com/bobarin/fala/internal/services"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	dequeueTimeout = 5 * time.Second
	retryDelay     = time.Second
)

// JobSource yields queued synthesis jobs.
type JobSource interface {
	Dequeue(ctx context.Context, queueName string, timeout time.Duration) (*queue.Job, error)
}

// History records job progress.
type History interface {
	MarkSynthesisRunning(ctx context.Context, id uuid.UUID) error
	CompleteSynthesis(ctx context.Context, id uuid.UUID, outcome models.SynthesisOutcome) error
}

// Speaker runs one synthesis.
type Speaker interface {
	Speak(ctx context.Context, text, language string) *services.SynthesisResult
}

type Worker struct {
	jobs       JobSource
	history    History
	speech     Speaker
	retryDelay time.Duration // pause after a failed dequeue
}

func New(jobs JobSource, history History, speech Speaker) *Worker {
	return &Worker{jobs: jobs, history: history, speech: speech, retryDelay: retryDelay}
}

// Start runs concurrency dequeue loops and blocks until ctx is canceled.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("[Worker] Started with concurrency: %d", concurrency)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			w.processQueue(ctx)
			return nil
		})
	}

	_ = g.Wait()
	log.Println("[Worker] Shutting down...")
}

func (w *Worker) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.jobs.Dequeue(ctx, queue.QueueSynthesize, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Worker] Error dequeuing from %s: %v", queue.QueueSynthesize, err)
			sleep(ctx, w.retryDelay)
			continue
		}

		if job == nil {
			continue // No job available, retry
		}

		w.handleJob(ctx, job)
	}
}

// handleJob runs a single synthesis job and stores its outcome. Outcome
// writes use a fresh context so a shutdown mid-job is still recorded.
func (w *Worker) handleJob(ctx context.Context, job *queue.Job) {
	log.Printf("[Worker] Processing job %s (lang: %s, textLen: %d)", job.ID, job.Language, len(job.Text))

	if err := w.history.MarkSynthesisRunning(ctx, job.ID); err != nil {
		log.Printf("[Worker] Failed to mark job %s running: %v", job.ID, err)
	}

	result := w.speech.Speak(ctx, job.Text, job.Language)

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.history.CompleteSynthesis(saveCtx, job.ID, result.Outcome()); err != nil {
		log.Printf("[Worker] Failed to store outcome of job %s: %v", job.ID, err)
		return
	}

	log.Printf("[Worker] Job %s finished: %s", job.ID, result.Message())
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
