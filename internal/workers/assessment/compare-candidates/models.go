package comparecandidates

import (
	"context"

	"github.com/google/uuid"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

type Input struct {
	ResultIDs  []string `json:"resultIds"`
	TemplateID string   `json:"templateId"`
}

// CandidateSummary is one candidate's row of the comparison report. Metric
// pointers stay nil when the metric was never computed for that candidate;
// "unknown" is not zero.
type CandidateSummary struct {
	ResultID                 string             `json:"resultId"`
	CandidateName            string             `json:"candidateName"`
	OverallPercentage        *float64           `json:"overallPercentage,omitempty"`
	Passed                   bool               `json:"passed"`
	Personality              map[string]float64 `json:"personality,omitempty"`
	DiversityRatio           *float64           `json:"diversityRatio,omitempty"`
	SaturationRatio          *float64           `json:"saturationRatio,omitempty"`
	TeamFitMultiplier        *float64           `json:"teamFitMultiplier,omitempty"`
	PersonalityCompatibility *float64           `json:"personalityCompatibility,omitempty"`
	CompetencySaturation     map[string]float64 `json:"competencySaturation,omitempty"`
	OverallRank              int                `json:"overallRank"`
	DiversityRank            int                `json:"diversityRank"`
	CompatibilityRank        int                `json:"compatibilityRank"`
}

// CompetencyComparison is the candidates' standing on one competency that
// appears in at least one result. A candidate without a score for the
// competency is reported as 0 here (score coverage is assumed complete once
// a competency has been assessed for anyone).
type CompetencyComparison struct {
	CompetencyID   string             `json:"competencyId"`
	Name           string             `json:"name"`
	Scores         map[string]float64 `json:"scores"`
	TeamSaturation *float64           `json:"teamSaturation,omitempty"`
	IsTeamGap      bool               `json:"isTeamGap"`
	BestResultID   string             `json:"bestResultId"`
}

// GapCoverage lists, for one team gap, which candidates reach the coverage
// threshold. BestCovererID is nil when nobody does; that is an expected
// state, not an error.
type GapCoverage struct {
	CompetencyID      string   `json:"competencyId"`
	Name              string   `json:"name"`
	CoveringResultIDs []string `json:"coveringResultIds"`
	BestCovererID     *string  `json:"bestCovererId,omitempty"`
}

// ComplementarityPair reports the fraction of all tracked gaps a candidate
// pair jointly covers, on a 0-100 scale.
type ComplementarityPair struct {
	ResultIDA       string  `json:"resultIdA"`
	ResultIDB       string  `json:"resultIdB"`
	CoveredGaps     int     `json:"coveredGaps"`
	TotalGaps       int     `json:"totalGaps"`
	Complementarity float64 `json:"complementarity"`
}

type Output struct {
	TemplateID          string                 `json:"templateId"`
	TeamID              string                 `json:"teamId,omitempty"`
	TeamAvailable       bool                   `json:"teamAvailable"`
	TeamSize            int                    `json:"teamSize"`
	TargetRole          string                 `json:"targetRole,omitempty"`
	SaturationThreshold *float64               `json:"saturationThreshold,omitempty"`
	TeamSaturation      map[string]float64     `json:"teamSaturation"`
	Candidates          []CandidateSummary     `json:"candidates"`
	Competencies        []CompetencyComparison `json:"competencies"`
	GapCoverage         []GapCoverage          `json:"gapCoverage"`
	Pairs               []ComplementarityPair  `json:"pairs"`
}

// ResultSource resolves completed test results by id set.
type ResultSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TestResult, error)
}

// TemplateSource resolves test templates.
type TemplateSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.TestTemplate, error)
}

// TeamSource resolves team profiles. Best-effort from the comparison
// engine's perspective.
type TeamSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.TeamProfile, error)
}

type ServiceDependencies struct {
	Logger    logger.Logger
	Results   ResultSource
	Templates TemplateSource
	Teams     TeamSource
}
