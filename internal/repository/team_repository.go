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

// TeamRepository reads team profiles maintained by the team-data
// collaborator. Read-only from this service's perspective.
type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// FindByID loads a team profile with its competency saturation map.
// Returns sql.ErrNoRows when the team does not exist.
func (r *TeamRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TeamProfile, error) {
	query := `
		SELECT id, name, active, member_ids, saturation, skill_gaps
		FROM team_profiles WHERE id = $1`

	var (
		team       models.TeamProfile
		memberIDs  pq.StringArray
		satJSON    []byte
		skillGaps  pq.StringArray
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&team.ID, &team.Name, &team.Active, &memberIDs, &satJSON, &skillGaps,
	)
	if err != nil {
		return nil, err
	}

	for _, m := range memberIDs {
		memberID, parseErr := uuid.Parse(m)
		if parseErr != nil {
			continue
		}
		team.MemberIDs = append(team.MemberIDs, memberID)
	}
	team.SkillGaps = skillGaps

	if len(satJSON) > 0 {
		raw := map[string]float64{}
		if err := json.Unmarshal(satJSON, &raw); err != nil {
			return nil, fmt.Errorf("decode saturation for team %s: %w", team.ID, err)
		}
		team.Saturation = make(map[uuid.UUID]float64, len(raw))
		for k, v := range raw {
			compID, parseErr := uuid.Parse(k)
			if parseErr != nil {
				continue
			}
			team.Saturation[compID] = v
		}
	}
	return &team, nil
}
