package scoresession

import (
	"context"

	"github.com/google/uuid"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

type Input struct {
	SessionID  string `json:"sessionId"`
	TemplateID string `json:"templateId"`
}

type CompetencyResult struct {
	CompetencyID string  `json:"competencyId"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	EarnedPoints float64 `json:"earnedPoints"`
	MaxPoints    float64 `json:"maxPoints"`
	Percentage   float64 `json:"percentage"`
	Answered     int     `json:"answered"`
	Skipped      int     `json:"skipped"`
}

type Output struct {
	SessionID         string             `json:"sessionId"`
	TemplateID        string             `json:"templateId"`
	OverallPercentage *float64           `json:"overallPercentage,omitempty"`
	Passed            bool               `json:"passed"`
	PassingThreshold  float64            `json:"passingThreshold"`
	CompetencyScores  []CompetencyResult `json:"competencyScores"`
	AnswerCount       int                `json:"answerCount"`
	SkippedCount      int                `json:"skippedCount"`
	UnattributedCount int                `json:"unattributedCount"`
}

// AnswerSource loads a session's answers with their attribution chain.
type AnswerSource interface {
	AnswersBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.TestAnswer, error)
}

// TemplateSource resolves test templates.
type TemplateSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.TestTemplate, error)
}

// CompetencyBatchLoader resolves the competencies a set of answers refers
// to, each at most once.
type CompetencyBatchLoader interface {
	LoadForAnswers(ctx context.Context, answers []*models.TestAnswer) (map[uuid.UUID]*models.Competency, error)
}

type ServiceDependencies struct {
	Logger       logger.Logger
	Answers      AnswerSource
	Templates    TemplateSource
	Competencies CompetencyBatchLoader
}
