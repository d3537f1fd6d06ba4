package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultRow(rows *sqlmock.Rows, id, sessionID, templateID uuid.UUID, overall interface{}, scores, metrics string) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), sessionID.String(), templateID.String(), "Alice", overall,
		true, scores, metrics, nil, time.Now(),
	)
}

func TestResultRepository_FindByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db)

	id := uuid.New()
	compID := uuid.New()
	scores := `[{"competencyId":"` + compID.String() + `","name":"Go","percentage":82.5}]`
	metrics := `{"diversityRatio":0.7,"personalityCompatibility":0.4}`

	rows := sqlmock.NewRows([]string{
		"id", "session_id", "template_id", "candidate_name", "overall_percentage",
		"passed", "competency_scores", "metrics", "personality", "completed_at",
	})
	resultRow(rows, id, uuid.New(), uuid.New(), 82.5, scores, metrics)

	mock.ExpectQuery(`SELECT .+ FROM test_results WHERE id = ANY\(\$1\)`).
		WithArgs(pq.Array([]string{id.String()})).
		WillReturnRows(rows)

	out, err := repo.FindByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, out, 1)

	res := out[0]
	assert.Equal(t, "Alice", res.CandidateName)
	require.NotNil(t, res.OverallPercentage)
	assert.InDelta(t, 82.5, *res.OverallPercentage, 0.001)
	require.Len(t, res.CompetencyScores, 1)
	assert.Equal(t, compID, res.CompetencyScores[0].CompetencyID)
	require.NotNil(t, res.Metrics.DiversityRatio)
	assert.InDelta(t, 0.7, *res.Metrics.DiversityRatio, 0.001)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_NullOverallStaysNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "template_id", "candidate_name", "overall_percentage",
		"passed", "competency_scores", "metrics", "personality", "completed_at",
	})
	resultRow(rows, id, uuid.New(), uuid.New(), nil, "[]", "{}")

	mock.ExpectQuery(`SELECT .+ FROM test_results WHERE id = ANY\(\$1\)`).
		WillReturnRows(rows)

	out, err := repo.FindByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].OverallPercentage)
}

func TestResultRepository_CorruptMetricsDegrade(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "template_id", "candidate_name", "overall_percentage",
		"passed", "competency_scores", "metrics", "personality", "completed_at",
	})
	resultRow(rows, id, uuid.New(), uuid.New(), 50.0, "[]", `{broken`)

	mock.ExpectQuery(`SELECT .+ FROM test_results WHERE id = ANY\(\$1\)`).
		WillReturnRows(rows)

	out, err := repo.FindByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Metrics.DiversityRatio)
	assert.Nil(t, out[0].Metrics.PersonalityCompatibility)
}

func TestResultRepository_FindBySessionID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db)

	sessionID := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "template_id", "candidate_name", "overall_percentage",
		"passed", "competency_scores", "metrics", "personality", "completed_at",
	})

	mock.ExpectQuery(`SELECT .+ FROM test_results WHERE session_id = \$1`).
		WithArgs(sessionID.String()).
		WillReturnRows(rows)

	out, err := repo.FindBySessionID(context.Background(), sessionID)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
