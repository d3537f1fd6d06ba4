package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"assessment-workers/internal/models"
)

// CatalogRepository reads the competency/indicator/question catalog with
// batch queries. Every method issues exactly one query so callers can build
// whole-template views without per-entity cascades.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CompetenciesByTemplate loads all competencies referenced by a template.
func (r *CatalogRepository) CompetenciesByTemplate(ctx context.Context, templateID uuid.UUID) ([]*models.Competency, error) {
	query := `
		SELECT c.id, c.name, c.category, c.active, c.standard_codes
		FROM competencies c
		JOIN template_competencies tc ON tc.competency_id = c.id
		WHERE tc.template_id = $1
		ORDER BY c.name`
	rows, err := r.db.QueryContext(ctx, query, templateID.String())
	if err != nil {
		return nil, fmt.Errorf("query template competencies: %w", err)
	}
	defer rows.Close()

	return scanCompetencies(rows)
}

// IndicatorsByCompetencyIDs loads all behavioral indicators under a
// competency set in one query.
func (r *CatalogRepository) IndicatorsByCompetencyIDs(ctx context.Context, competencyIDs []uuid.UUID) ([]*models.BehavioralIndicator, error) {
	if len(competencyIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, competency_id, name, weight, active, order_index
		FROM behavioral_indicators
		WHERE competency_id = ANY($1)
		ORDER BY competency_id, order_index`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(competencyIDs)))
	if err != nil {
		return nil, fmt.Errorf("query indicators: %w", err)
	}
	defer rows.Close()

	var out []*models.BehavioralIndicator
	for rows.Next() {
		var ind models.BehavioralIndicator
		if err := rows.Scan(&ind.ID, &ind.CompetencyID, &ind.Name, &ind.Weight, &ind.Active, &ind.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}
		out = append(out, &ind)
	}
	return out, rows.Err()
}

// QuestionsByIndicatorIDs loads all assessment questions under an indicator
// set in one query.
func (r *CatalogRepository) QuestionsByIndicatorIDs(ctx context.Context, indicatorIDs []uuid.UUID) ([]*models.AssessmentQuestion, error) {
	if len(indicatorIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, indicator_id, text, active, difficulty, type
		FROM assessment_questions
		WHERE indicator_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(indicatorIDs)))
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []*models.AssessmentQuestion
	for rows.Next() {
		var q models.AssessmentQuestion
		if err := rows.Scan(&q.ID, &q.IndicatorID, &q.Text, &q.Active, &q.Difficulty, &q.Type); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

// AnswersBySession loads a session's answers with the full
// question/indicator/competency chain joined in. LEFT JOINs keep answers
// whose chain is partially missing; those rows carry nil chain links.
func (r *CatalogRepository) AnswersBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.TestAnswer, error) {
	query := `
		SELECT a.id, a.session_id, a.question_id, a.skipped, a.correct,
		       a.earned_points, a.max_points,
		       q.id, q.indicator_id, q.active, q.difficulty, q.type,
		       i.id, i.competency_id, i.weight, i.active, i.order_index,
		       c.id, c.name, c.category, c.active
		FROM test_answers a
		LEFT JOIN assessment_questions q ON q.id = a.question_id
		LEFT JOIN behavioral_indicators i ON i.id = q.indicator_id
		LEFT JOIN competencies c ON c.id = i.competency_id
		WHERE a.session_id = $1`
	rows, err := r.db.QueryContext(ctx, query, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("query session answers: %w", err)
	}
	defer rows.Close()

	var out []*models.TestAnswer
	for rows.Next() {
		var (
			ans models.TestAnswer

			qID, qIndicatorID         sql.NullString
			qActive                   sql.NullBool
			qDifficulty, qType        sql.NullString
			iID, iCompetencyID        sql.NullString
			iWeight                   sql.NullFloat64
			iActive                   sql.NullBool
			iOrder                    sql.NullInt64
			cID, cName, cCategory     sql.NullString
			cActive                   sql.NullBool
		)
		if err := rows.Scan(
			&ans.ID, &ans.SessionID, &ans.QuestionID, &ans.Skipped, &ans.Correct,
			&ans.EarnedPoints, &ans.MaxPoints,
			&qID, &qIndicatorID, &qActive, &qDifficulty, &qType,
			&iID, &iCompetencyID, &iWeight, &iActive, &iOrder,
			&cID, &cName, &cCategory, &cActive,
		); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}

		if qID.Valid {
			question := &models.AssessmentQuestion{
				Active:     qActive.Bool,
				Difficulty: qDifficulty.String,
				Type:       qType.String,
			}
			question.ID, _ = uuid.Parse(qID.String)
			if qIndicatorID.Valid {
				question.IndicatorID, _ = uuid.Parse(qIndicatorID.String)
			}

			if iID.Valid {
				indicator := &models.BehavioralIndicator{
					Weight:     iWeight.Float64,
					Active:     iActive.Bool,
					OrderIndex: int(iOrder.Int64),
				}
				indicator.ID, _ = uuid.Parse(iID.String)
				if iCompetencyID.Valid {
					indicator.CompetencyID, _ = uuid.Parse(iCompetencyID.String)
				}

				if cID.Valid {
					competency := &models.Competency{
						Name:     cName.String,
						Category: cCategory.String,
						Active:   cActive.Bool,
					}
					competency.ID, _ = uuid.Parse(cID.String)
					indicator.Competency = competency
				}
				question.Indicator = indicator
			}
			ans.Question = question
		}

		out = append(out, &ans)
	}
	return out, rows.Err()
}
