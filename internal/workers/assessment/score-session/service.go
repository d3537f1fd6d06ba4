package scoresession

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
)

type Service struct {
	config       *Config
	logger       logger.Logger
	answers      AnswerSource
	templates    TemplateSource
	competencies CompetencyBatchLoader
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:       config,
		logger:       deps.Logger,
		answers:      deps.Answers,
		templates:    deps.Templates,
		competencies: deps.Competencies,
	}
}

// competencyTally accumulates indicator-weighted points per competency.
type competencyTally struct {
	earned   float64
	max      float64
	answered int
	skipped  int
}

// Execute scores one completed session: answers are attributed through the
// question/indicator/competency chain, points weighted by indicator weight,
// and the overall percentage judged against the template's passing
// threshold. A session with zero scorable points gets a nil overall instead
// of a fabricated zero.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	sessionID, err := uuid.Parse(input.SessionID)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("malformed sessionId %q", input.SessionID))
	}
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

	answers, err := s.answers.AnswersBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("session answers", err)
	}
	if len(answers) == 0 {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeSessionNotFound,
			Message:   "Session has no recorded answers",
			Details:   fmt.Sprintf("sessionId: %s", sessionID.String()),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	catalog, err := s.competencies.LoadForAnswers(ctx, answers)
	if err != nil {
		return nil, errors.NewCompetencyLoadFailedError(err)
	}

	var order []uuid.UUID
	tallies := make(map[uuid.UUID]*competencyTally)
	output := &Output{
		SessionID:        sessionID.String(),
		TemplateID:       templateID.String(),
		PassingThreshold: template.PassingThreshold,
		AnswerCount:      len(answers),
	}

	var totalEarned, totalMax float64
	for _, ans := range answers {
		competencyID, ok := ans.CompetencyID()
		if !ok {
			output.UnattributedCount++
			continue
		}

		tally, exists := tallies[competencyID]
		if !exists {
			tally = &competencyTally{}
			tallies[competencyID] = tally
			order = append(order, competencyID)
		}
		weight := ans.Question.Indicator.Weight
		if weight <= 0 {
			weight = 1
		}
		if ans.Skipped {
			// A skipped answer earns nothing but its max points stay in the
			// denominator.
			tally.max += ans.MaxPoints * weight
			totalMax += ans.MaxPoints * weight
			tally.skipped++
			output.SkippedCount++
			continue
		}

		tally.earned += ans.EarnedPoints * weight
		tally.max += ans.MaxPoints * weight
		tally.answered++
		totalEarned += ans.EarnedPoints * weight
		totalMax += ans.MaxPoints * weight
	}

	output.CompetencyScores = make([]CompetencyResult, 0, len(order))
	for _, competencyID := range order {
		tally := tallies[competencyID]
		cr := CompetencyResult{
			CompetencyID: competencyID.String(),
			EarnedPoints: tally.earned,
			MaxPoints:    tally.max,
			Answered:     tally.answered,
			Skipped:      tally.skipped,
		}
		if tally.max > 0 {
			cr.Percentage = tally.earned / tally.max * 100
		}
		if c, ok := catalog[competencyID]; ok {
			cr.Name = c.Name
			cr.Category = c.Category
		}
		output.CompetencyScores = append(output.CompetencyScores, cr)
	}

	if totalMax > 0 {
		overall := totalEarned / totalMax * 100
		output.OverallPercentage = &overall
		output.Passed = overall >= template.PassingThreshold
	}

	s.logger.Info("session scored", map[string]interface{}{
		"sessionId":    sessionID.String(),
		"templateId":   templateID.String(),
		"competencies": len(output.CompetencyScores),
		"answers":      output.AnswerCount,
		"skipped":      output.SkippedCount,
		"unattributed": output.UnattributedCount,
		"passed":       output.Passed,
	})
	return output, nil
}
