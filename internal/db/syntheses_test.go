package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bobarin/fala/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &DB{conn}, mock
}

var synthesisRowColumns = []string{
	"id", "text", "language", "voice", "provider", "status", "reason", "cancellation_reason",
	"error_details", "message", "audio_bytes", "created_at", "started_at", "finished_at",
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Errorf("expected empty string to be NULL, got %+v", ns)
	}

	ns := nullString("EndOfStream")
	if !ns.Valid || ns.String != "EndOfStream" {
		t.Errorf("unexpected value: %+v", ns)
	}
}

func TestCreateSynthesis(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &models.Synthesis{
		ID: uuid.New(), Text: "Olá", Language: "pt-BR", Voice: "pt-BR-AntonioNeural",
		Provider: "azure", Status: models.SynthesisStatusQueued,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO syntheses")).
		WithArgs(s.ID, s.Text, s.Language, s.Voice, s.Provider, s.Status).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, db.CreateSynthesis(context.Background(), s))
	assert.Equal(t, created, s.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteSynthesis(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	outcome := models.SynthesisOutcome{
		Status:             models.SynthesisStatusCanceled,
		Reason:             "Canceled",
		CancellationReason: "EndOfStream",
		Message:            "Sintese de fala cancelada!!! Detalhes: CancellationReason.EndOfStream",
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE syntheses")).
		WithArgs(outcome.Status, outcome.Reason, "EndOfStream", nil, outcome.Message, 0, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.CompleteSynthesis(context.Background(), id, outcome))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteSynthesisMissingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE syntheses")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.CompleteSynthesis(context.Background(), uuid.New(), models.SynthesisOutcome{Status: models.SynthesisStatusCompleted})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteSynthesisExecError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE syntheses")).
		WillReturnError(errors.New("connection reset"))

	err := db.CompleteSynthesis(context.Background(), uuid.New(), models.SynthesisOutcome{})
	assert.EqualError(t, err, "failed to complete synthesis: connection reset")
}

func TestGetSynthesis(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM syntheses WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(synthesisRowColumns).AddRow(
			id.String(), "Hello", "en-US", "en-US-JessaNeural", "azure", "completed",
			"SynthesizingAudioCompleted", nil, nil, "Texto sintetizado com sucesso!",
			1024, created, created, created,
		))

	s, err := db.GetSynthesis(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, models.SynthesisStatusCompleted, s.Status)
	require.NotNil(t, s.Reason)
	assert.Equal(t, "SynthesizingAudioCompleted", *s.Reason)
	assert.Nil(t, s.CancellationReason)
	assert.Equal(t, 1024, s.AudioBytes)
	require.NotNil(t, s.FinishedAt)
}

func TestGetSynthesisNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM syntheses WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(synthesisRowColumns))

	_, err := db.GetSynthesis(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSynthesesPassesFilterAndPaging(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ($1 = '' OR status = $1)")).
		WithArgs("canceled", 10, 20).
		WillReturnRows(sqlmock.NewRows(synthesisRowColumns).
			AddRow(uuid.New().String(), "a", "pt-BR", "pt-BR-AntonioNeural", "azure", "canceled",
				"Canceled", "Error", "texto vazio", "Erro ao sintetizar texto!!! Detalhes: texto vazio",
				0, created, nil, created).
			AddRow(uuid.New().String(), "b", "fr-FR", "fr-FR-HenriNeural", "azure", "canceled",
				"Canceled", "CancelledByUser", nil, "Sintese de fala cancelada!!! Detalhes: CancellationReason.CancelledByUser",
				0, created, created, created))

	list, err := db.ListSyntheses(context.Background(), "canceled", 10, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].ErrorDetails)
	assert.Equal(t, "texto vazio", *list[0].ErrorDetails)
	assert.Nil(t, list[0].StartedAt)
	assert.Nil(t, list[1].ErrorDetails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSynthesesEmpty(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM syntheses")).
		WithArgs("", 20, 0).
		WillReturnRows(sqlmock.NewRows(synthesisRowColumns))

	list, err := db.ListSyntheses(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCountSyntheses(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM syntheses WHERE ($1 = '' OR status = $1)")).
		WithArgs("queued").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := db.CountSyntheses(context.Background(), "queued")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
