package templatediagnostics

import (
	"context"

	"github.com/google/uuid"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

type Input struct {
	TemplateID string `json:"templateId"`
}

type IndicatorDiagnostics struct {
	IndicatorID     string `json:"indicatorId"`
	Name            string `json:"name"`
	ActiveQuestions int    `json:"activeQuestions"`
	TotalQuestions  int    `json:"totalQuestions"`
	Required        int    `json:"required"`
	Shortfall       int    `json:"shortfall"`
}

type CompetencyDiagnostics struct {
	CompetencyID    string                 `json:"competencyId"`
	Name            string                 `json:"name"`
	IndicatorCount  int                    `json:"indicatorCount"`
	ActiveQuestions int                    `json:"activeQuestions"`
	Required        int                    `json:"required"`
	Shortfall       int                    `json:"shortfall"`
	Indicators      []IndicatorDiagnostics `json:"indicators"`
}

type Output struct {
	TemplateID              string                  `json:"templateId"`
	TemplateName            string                  `json:"templateName"`
	RequiredPerIndicator    int                     `json:"requiredPerIndicator"`
	TotalQuestionsAvailable int                     `json:"totalQuestionsAvailable"`
	TotalQuestionsRequired  int                     `json:"totalQuestionsRequired"`
	TotalShortfall          int                     `json:"totalShortfall"`
	CanStartSession         bool                    `json:"canStartSession"`
	Competencies            []CompetencyDiagnostics `json:"competencies"`
	Issues                  []string                `json:"issues"`
}

// TemplateSource resolves test templates.
type TemplateSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.TestTemplate, error)
}

// CatalogSource batch-loads the catalog under a template, one query per
// entity level.
type CatalogSource interface {
	CompetenciesByTemplate(ctx context.Context, templateID uuid.UUID) ([]*models.Competency, error)
	IndicatorsByCompetencyIDs(ctx context.Context, competencyIDs []uuid.UUID) ([]*models.BehavioralIndicator, error)
	QuestionsByIndicatorIDs(ctx context.Context, indicatorIDs []uuid.UUID) ([]*models.AssessmentQuestion, error)
}

type ServiceDependencies struct {
	Logger    logger.Logger
	Templates TemplateSource
	Catalog   CatalogSource
}
