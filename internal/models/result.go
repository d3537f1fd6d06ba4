package models

import (
	"time"

	"github.com/google/uuid"
)

// CompetencyScore is one per-competency entry of a completed test result.
type CompetencyScore struct {
	CompetencyID uuid.UUID `json:"competencyId"`
	Name         string    `json:"name"`
	Percentage   float64   `json:"percentage"`
}

// ExtendedMetrics carries the optional analytics computed at session
// completion. A nil field means "not computed", which is distinct from a
// computed zero and must stay that way through ranking.
type ExtendedMetrics struct {
	DiversityRatio           *float64           `json:"diversityRatio,omitempty"`
	SaturationRatio          *float64           `json:"saturationRatio,omitempty"`
	TeamFitMultiplier        *float64           `json:"teamFitMultiplier,omitempty"`
	PersonalityCompatibility *float64           `json:"personalityCompatibility,omitempty"`
	CompetencySaturation     map[string]float64 `json:"competencySaturation,omitempty"`
}

// TestResult is created once at session completion and is read-only for
// scoring and comparison.
type TestResult struct {
	ID                uuid.UUID          `json:"id"`
	SessionID         uuid.UUID          `json:"sessionId"`
	TemplateID        uuid.UUID          `json:"templateId"`
	CandidateName     string             `json:"candidateName"`
	OverallPercentage *float64           `json:"overallPercentage,omitempty"`
	Passed            bool               `json:"passed"`
	CompetencyScores  []CompetencyScore  `json:"competencyScores"`
	Metrics           ExtendedMetrics    `json:"metrics"`
	Personality       map[string]float64 `json:"personality,omitempty"`
	CompletedAt       time.Time          `json:"completedAt"`
}

// ScoreFor reports the percentage this result holds for a competency, or
// false when the competency was never assessed for this candidate.
func (r *TestResult) ScoreFor(competencyID uuid.UUID) (float64, bool) {
	for _, s := range r.CompetencyScores {
		if s.CompetencyID == competencyID {
			return s.Percentage, true
		}
	}
	return 0, false
}
