package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"assessment-workers/internal/models"
)

// ResultRepository reads completed test results. Results are immutable
// snapshots once a session completes.
type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// FindByIDs loads results for an id set in a single query. Missing ids are
// simply absent from the returned slice; the caller decides whether that is
// an error.
func (r *ResultRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TestResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, session_id, template_id, candidate_name, overall_percentage,
		       passed, competency_scores, metrics, personality, completed_at
		FROM test_results WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("query results by ids: %w", err)
	}
	defer rows.Close()

	var out []*models.TestResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// FindBySessionID loads the single result of a completed session.
func (r *ResultRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.TestResult, error) {
	query := `
		SELECT id, session_id, template_id, candidate_name, overall_percentage,
		       passed, competency_scores, metrics, personality, completed_at
		FROM test_results WHERE session_id = $1`
	rows, err := r.db.QueryContext(ctx, query, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("query result by session: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	return scanResult(rows)
}

func scanResult(rows *sql.Rows) (*models.TestResult, error) {
	var (
		res             models.TestResult
		overall         sql.NullFloat64
		scoresJSON      []byte
		metricsJSON     []byte
		personalityJSON []byte
	)
	if err := rows.Scan(
		&res.ID, &res.SessionID, &res.TemplateID, &res.CandidateName, &overall,
		&res.Passed, &scoresJSON, &metricsJSON, &personalityJSON, &res.CompletedAt,
	); err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}

	if overall.Valid {
		v := overall.Float64
		res.OverallPercentage = &v
	}
	if len(scoresJSON) > 0 {
		if err := json.Unmarshal(scoresJSON, &res.CompetencyScores); err != nil {
			return nil, fmt.Errorf("decode competency scores for result %s: %w", res.ID, err)
		}
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &res.Metrics); err != nil {
			// Metrics are optional analytics; a corrupt bag degrades to "not computed".
			res.Metrics = models.ExtendedMetrics{}
		}
	}
	if len(personalityJSON) > 0 {
		if err := json.Unmarshal(personalityJSON, &res.Personality); err != nil {
			res.Personality = nil
		}
	}
	return &res, nil
}
