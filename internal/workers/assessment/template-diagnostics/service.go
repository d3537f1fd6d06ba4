package templatediagnostics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

type Service struct {
	config    *Config
	logger    logger.Logger
	templates TemplateSource
	catalog   CatalogSource
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		logger:    deps.Logger,
		templates: deps.Templates,
		catalog:   deps.Catalog,
	}
}

// Execute builds the readiness report for one template: three batch queries
// (competencies, indicators, questions), then pure counting. A competency
// with zero indicators carries its full per-indicator requirement as
// shortfall since no question can ever satisfy it.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	templateID, err := uuid.Parse(input.TemplateID)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("malformed templateId %q", input.TemplateID))
	}

	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewTemplateNotFoundError(templateID.String())
		}
		return nil, errors.NewQueryExecutionFailedError("template", err)
	}

	required := template.RequiredQuestionsPerIndicator
	if required <= 0 {
		required = s.config.DefaultRequiredPerIndicator
	}

	competencies, err := s.catalog.CompetenciesByTemplate(ctx, templateID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("template competencies", err)
	}
	competencyIDs := make([]uuid.UUID, 0, len(competencies))
	for _, c := range competencies {
		competencyIDs = append(competencyIDs, c.ID)
	}

	indicators, err := s.catalog.IndicatorsByCompetencyIDs(ctx, competencyIDs)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("indicators", err)
	}
	indicatorsByCompetency := make(map[uuid.UUID][]*models.BehavioralIndicator)
	indicatorIDs := make([]uuid.UUID, 0, len(indicators))
	for _, ind := range indicators {
		indicatorsByCompetency[ind.CompetencyID] = append(indicatorsByCompetency[ind.CompetencyID], ind)
		indicatorIDs = append(indicatorIDs, ind.ID)
	}

	questions, err := s.catalog.QuestionsByIndicatorIDs(ctx, indicatorIDs)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("questions", err)
	}
	activeByIndicator := make(map[uuid.UUID]int)
	totalByIndicator := make(map[uuid.UUID]int)
	for _, q := range questions {
		totalByIndicator[q.IndicatorID]++
		if q.Active {
			activeByIndicator[q.IndicatorID]++
		}
	}

	output := &Output{
		TemplateID:           templateID.String(),
		TemplateName:         template.Name,
		RequiredPerIndicator: required,
		Competencies:         make([]CompetencyDiagnostics, 0, len(competencies)),
		Issues:               []string{},
	}
	for _, c := range competencies {
		cd := s.diagnoseCompetency(c, indicatorsByCompetency[c.ID], activeByIndicator, totalByIndicator, required)
		output.TotalQuestionsAvailable += cd.ActiveQuestions
		output.TotalQuestionsRequired += cd.Required
		output.TotalShortfall += cd.Shortfall
		output.Competencies = append(output.Competencies, cd)
	}
	output.CanStartSession = output.TotalQuestionsAvailable >= output.TotalQuestionsRequired
	output.Issues = buildIssues(output)

	s.logger.Info("template diagnostics complete", map[string]interface{}{
		"templateId":      templateID.String(),
		"competencies":    len(output.Competencies),
		"available":       output.TotalQuestionsAvailable,
		"required":        output.TotalQuestionsRequired,
		"canStartSession": output.CanStartSession,
	})
	return output, nil
}

func (s *Service) diagnoseCompetency(c *models.Competency, indicators []*models.BehavioralIndicator, activeByIndicator, totalByIndicator map[uuid.UUID]int, required int) CompetencyDiagnostics {
	cd := CompetencyDiagnostics{
		CompetencyID:   c.ID.String(),
		Name:           c.Name,
		IndicatorCount: len(indicators),
		Indicators:     make([]IndicatorDiagnostics, 0, len(indicators)),
	}

	if len(indicators) == 0 {
		cd.Required = required
		cd.Shortfall = required
		return cd
	}

	for _, ind := range indicators {
		active := activeByIndicator[ind.ID]
		shortfall := required - active
		if shortfall < 0 {
			shortfall = 0
		}
		cd.Indicators = append(cd.Indicators, IndicatorDiagnostics{
			IndicatorID:     ind.ID.String(),
			Name:            ind.Name,
			ActiveQuestions: active,
			TotalQuestions:  totalByIndicator[ind.ID],
			Required:        required,
			Shortfall:       shortfall,
		})
		cd.ActiveQuestions += active
		cd.Required += required
		cd.Shortfall += shortfall
	}
	return cd
}

// buildIssues renders the shortfalls as troubleshooting text. Iteration
// follows the competency order of the report, so the text is stable for a
// given catalog snapshot.
func buildIssues(output *Output) []string {
	issues := make([]string, 0)
	if len(output.Competencies) == 0 {
		issues = append(issues, "Template references no competencies; add at least one before starting sessions.")
		return issues
	}

	for _, cd := range output.Competencies {
		if cd.IndicatorCount == 0 {
			issues = append(issues, fmt.Sprintf(
				"Competency %q has no behavioral indicators; it cannot contribute questions until indicators are defined.", cd.Name))
			continue
		}
		for _, ind := range cd.Indicators {
			if ind.Shortfall == 0 {
				continue
			}
			if ind.TotalQuestions > ind.ActiveQuestions {
				issues = append(issues, fmt.Sprintf(
					"Indicator %q of competency %q needs %d more active questions (%d exist but are inactive).",
					ind.Name, cd.Name, ind.Shortfall, ind.TotalQuestions-ind.ActiveQuestions))
			} else {
				issues = append(issues, fmt.Sprintf(
					"Indicator %q of competency %q needs %d more active questions.",
					ind.Name, cd.Name, ind.Shortfall))
			}
		}
	}

	if !output.CanStartSession {
		issues = append(issues, fmt.Sprintf(
			"Sessions cannot start: %d active questions available, %d required.",
			output.TotalQuestionsAvailable, output.TotalQuestionsRequired))
	}
	return issues
}
