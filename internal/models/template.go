package models

import "github.com/google/uuid"

// TemplateGoal is the purpose a template was authored for. Only TEAM_FIT
// templates are accepted by the candidate comparison engine.
type TemplateGoal string

const (
	GoalTeamFit           TemplateGoal = "TEAM_FIT"
	GoalGeneralAssessment TemplateGoal = "GENERAL_ASSESSMENT"
	GoalRoleFit           TemplateGoal = "ROLE_FIT"
)

// Blueprint is the typed team-fit configuration of a template.
type Blueprint struct {
	TeamID              *uuid.UUID `json:"teamId,omitempty"`
	TargetRole          string     `json:"targetRole,omitempty"`
	SaturationThreshold *float64   `json:"saturationThreshold,omitempty"`
}

// TestTemplate defines an assessment. Older templates carry their team-fit
// settings only in the untyped LegacyBlueprint map.
type TestTemplate struct {
	ID                            uuid.UUID              `json:"id"`
	Name                          string                 `json:"name"`
	Goal                          TemplateGoal           `json:"goal"`
	Blueprint                     *Blueprint             `json:"blueprint,omitempty"`
	LegacyBlueprint               map[string]interface{} `json:"legacyBlueprint,omitempty"`
	PassingThreshold              float64                `json:"passingThreshold"`
	RequiredQuestionsPerIndicator int                    `json:"requiredQuestionsPerIndicator"`
}
