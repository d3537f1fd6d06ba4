package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"assessment-workers/internal/models"
)

// TemplateRepository reads test templates.
type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindByID loads one template. Returns sql.ErrNoRows when absent.
func (r *TemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TestTemplate, error) {
	query := `
		SELECT id, name, goal, blueprint, legacy_blueprint,
		       passing_threshold, required_questions_per_indicator
		FROM test_templates WHERE id = $1`

	var (
		tpl        models.TestTemplate
		goal       string
		bpJSON     []byte
		legacyJSON []byte
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&tpl.ID, &tpl.Name, &goal, &bpJSON, &legacyJSON,
		&tpl.PassingThreshold, &tpl.RequiredQuestionsPerIndicator,
	)
	if err != nil {
		return nil, err
	}
	tpl.Goal = models.TemplateGoal(goal)

	if len(bpJSON) > 0 {
		var bp models.Blueprint
		if err := json.Unmarshal(bpJSON, &bp); err != nil {
			return nil, fmt.Errorf("decode blueprint for template %s: %w", tpl.ID, err)
		}
		tpl.Blueprint = &bp
	}
	if len(legacyJSON) > 0 {
		if err := json.Unmarshal(legacyJSON, &tpl.LegacyBlueprint); err != nil {
			// Legacy blueprints are untrusted; a corrupt map is treated as absent.
			tpl.LegacyBlueprint = nil
		}
	}
	return &tpl, nil
}
