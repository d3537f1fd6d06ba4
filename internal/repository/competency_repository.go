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

// CompetencyRepository reads the internal competency catalog.
type CompetencyRepository struct {
	db *sql.DB
}

func NewCompetencyRepository(db *sql.DB) *CompetencyRepository {
	return &CompetencyRepository{db: db}
}

const competencyColumns = `id, name, category, active, standard_codes`

// FindByIDs loads competencies for an id set in a single query.
func (r *CompetencyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Competency, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM competencies WHERE id = ANY($1)`, competencyColumns)
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("query competencies by ids: %w", err)
	}
	defer rows.Close()

	return scanCompetencies(rows)
}

// FindActiveByNames loads active competencies whose name matches any of the
// given names case-insensitively, in a single query.
func (r *CompetencyRepository) FindActiveByNames(ctx context.Context, names []string) ([]*models.Competency, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT %s FROM competencies WHERE active = true AND LOWER(name) = ANY($1)`,
		competencyColumns,
	)
	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("query competencies by names: %w", err)
	}
	defer rows.Close()

	return scanCompetencies(rows)
}

// FindAllActive loads the entire active competency catalog.
func (r *CompetencyRepository) FindAllActive(ctx context.Context) ([]*models.Competency, error) {
	query := fmt.Sprintf(`SELECT %s FROM competencies WHERE active = true ORDER BY name`, competencyColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active competencies: %w", err)
	}
	defer rows.Close()

	return scanCompetencies(rows)
}

func scanCompetencies(rows *sql.Rows) ([]*models.Competency, error) {
	var out []*models.Competency
	for rows.Next() {
		var (
			c         models.Competency
			codesJSON []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Active, &codesJSON); err != nil {
			return nil, fmt.Errorf("scan competency: %w", err)
		}
		if len(codesJSON) > 0 {
			if err := json.Unmarshal(codesJSON, &c.StandardCodes); err != nil {
				c.StandardCodes = nil
			}
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
