package models

import "github.com/google/uuid"

// TeamProfile is read-only team data supplied by the team-profile
// collaborator. Saturation ratios are in [0,1] per competency.
type TeamProfile struct {
	ID         uuid.UUID             `json:"id"`
	Name       string                `json:"name"`
	Active     bool                  `json:"active"`
	MemberIDs  []uuid.UUID           `json:"memberIds"`
	Saturation map[uuid.UUID]float64 `json:"saturation"`
	SkillGaps  []string              `json:"skillGaps,omitempty"`
}
