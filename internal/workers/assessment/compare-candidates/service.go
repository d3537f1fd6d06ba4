package comparecandidates

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

type Service struct {
	config    *Config
	logger    logger.Logger
	results   ResultSource
	templates TemplateSource
	teams     TeamSource
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		logger:    deps.Logger,
		results:   deps.Results,
		templates: deps.Templates,
		teams:     deps.Teams,
	}
}

// teamContext is the team-fit configuration extracted from a template,
// regardless of whether it was stored typed or in the legacy untyped map.
type teamContext struct {
	TeamID              *uuid.UUID
	TargetRole          string
	SaturationThreshold *float64
}

// Execute builds the full comparison report for 2 to 5 candidates assessed
// with the same team-fit template.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.ResultIDs) < MinCandidates || len(input.ResultIDs) > MaxCandidates {
		return nil, errors.NewInvalidInputError(
			fmt.Sprintf("comparison requires %d to %d candidates, got %d", MinCandidates, MaxCandidates, len(input.ResultIDs)))
	}

	resultIDs := make([]uuid.UUID, 0, len(input.ResultIDs))
	seen := make(map[uuid.UUID]bool, len(input.ResultIDs))
	for _, raw := range input.ResultIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("malformed resultId %q", raw))
		}
		if seen[id] {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("duplicate resultId %s", id))
		}
		seen[id] = true
		resultIDs = append(resultIDs, id)
	}
	templateID, err := uuid.Parse(input.TemplateID)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("malformed templateId %q", input.TemplateID))
	}

	found, err := s.results.FindByIDs(ctx, resultIDs)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("results", err)
	}
	byID := make(map[uuid.UUID]*models.TestResult, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	var missing []string
	results := make([]*models.TestResult, 0, len(resultIDs))
	for _, id := range resultIDs {
		r, ok := byID[id]
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		results = append(results, r)
	}
	if len(missing) > 0 {
		return nil, errors.NewResultNotFoundError(missing)
	}

	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewTemplateNotFoundError(templateID.String())
		}
		return nil, errors.NewQueryExecutionFailedError("template", err)
	}
	for _, r := range results {
		if r.TemplateID != templateID {
			return nil, errors.NewTemplateMismatchError(r.ID.String(), templateID.String(), r.TemplateID.String())
		}
	}
	if template.Goal != models.GoalTeamFit {
		return nil, errors.NewGoalNotTeamFitError(string(template.Goal))
	}

	teamCtx := s.extractTeamContext(template)
	team := s.fetchTeam(ctx, teamCtx.TeamID)

	overallRanks := rankDense(results, func(r *models.TestResult) *float64 { return r.OverallPercentage })
	diversityRanks := rankDense(results, func(r *models.TestResult) *float64 { return r.Metrics.DiversityRatio })
	compatibilityRanks := rankDense(results, func(r *models.TestResult) *float64 { return r.Metrics.PersonalityCompatibility })

	candidates := make([]CandidateSummary, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, CandidateSummary{
			ResultID:                 r.ID.String(),
			CandidateName:            r.CandidateName,
			OverallPercentage:        r.OverallPercentage,
			Passed:                   r.Passed,
			Personality:              r.Personality,
			DiversityRatio:           r.Metrics.DiversityRatio,
			SaturationRatio:          r.Metrics.SaturationRatio,
			TeamFitMultiplier:        r.Metrics.TeamFitMultiplier,
			PersonalityCompatibility: r.Metrics.PersonalityCompatibility,
			CompetencySaturation:     r.Metrics.CompetencySaturation,
			OverallRank:              overallRanks[r.ID],
			DiversityRank:            diversityRanks[r.ID],
			CompatibilityRank:        compatibilityRanks[r.ID],
		})
	}

	diversityThreshold := s.config.DiversityThreshold
	if teamCtx.SaturationThreshold != nil {
		diversityThreshold = *teamCtx.SaturationThreshold
	}
	competencies := s.buildCompetencyMatrix(results, team, diversityThreshold)
	gapCoverage := s.buildGapCoverage(results, competencies)
	pairs := s.buildPairs(results, competencies)

	output := &Output{
		TemplateID:          templateID.String(),
		TeamAvailable:       team != nil,
		TargetRole:          teamCtx.TargetRole,
		SaturationThreshold: teamCtx.SaturationThreshold,
		TeamSaturation:      map[string]float64{},
		Candidates:          candidates,
		Competencies:        competencies,
		GapCoverage:         gapCoverage,
		Pairs:               pairs,
	}
	if teamCtx.TeamID != nil {
		output.TeamID = teamCtx.TeamID.String()
	}
	if team != nil {
		output.TeamSize = len(team.MemberIDs)
		for id, sat := range team.Saturation {
			output.TeamSaturation[id.String()] = sat
		}
	}

	s.logger.Info("comparison report built", map[string]interface{}{
		"templateId":    templateID.String(),
		"candidates":    len(candidates),
		"competencies":  len(competencies),
		"teamAvailable": team != nil,
		"teamGaps":      len(gapCoverage),
	})
	return output, nil
}

// extractTeamContext prefers the typed blueprint and falls back to the
// legacy map, tolerating the value shapes older templates were saved with.
// Malformed legacy fields are logged and skipped, never fatal.
func (s *Service) extractTeamContext(template *models.TestTemplate) teamContext {
	if template.Blueprint != nil {
		return teamContext{
			TeamID:              template.Blueprint.TeamID,
			TargetRole:          template.Blueprint.TargetRole,
			SaturationThreshold: template.Blueprint.SaturationThreshold,
		}
	}

	var tc teamContext
	legacy := template.LegacyBlueprint
	if legacy == nil {
		return tc
	}

	if raw, ok := legacy["teamId"].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			tc.TeamID = &id
		} else {
			s.logger.Warn("legacy blueprint has malformed teamId", map[string]interface{}{
				"templateId": template.ID.String(),
				"teamId":     raw,
			})
		}
	}
	if role, ok := legacy["targetRole"].(string); ok {
		tc.TargetRole = role
	}
	if raw, ok := legacy["saturationThreshold"]; ok {
		switch v := raw.(type) {
		case float64:
			tc.SaturationThreshold = &v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				tc.SaturationThreshold = &f
			} else {
				s.logger.Warn("legacy blueprint has malformed saturationThreshold", map[string]interface{}{
					"templateId": template.ID.String(),
					"value":      v,
				})
			}
		}
	}
	return tc
}

// fetchTeam loads the team profile best-effort. Any failure or an inactive
// team degrades the report to candidate-only mode instead of failing it.
func (s *Service) fetchTeam(ctx context.Context, teamID *uuid.UUID) *models.TeamProfile {
	if teamID == nil {
		return nil
	}
	team, err := s.teams.FindByID(ctx, *teamID)
	if err != nil {
		s.logger.Warn("team profile unavailable, comparing without team context", map[string]interface{}{
			"teamId": teamID.String(),
			"error":  err.Error(),
		})
		return nil
	}
	if !team.Active {
		s.logger.Warn("team profile inactive, comparing without team context", map[string]interface{}{
			"teamId": teamID.String(),
		})
		return nil
	}
	return team
}

// buildCompetencyMatrix walks the union of competencies across all results
// in first-seen order. Candidates without a score on a competency are
// entered as 0. Gap flags need a team saturation entry strictly below the
// threshold; without a team there are no gaps.
func (s *Service) buildCompetencyMatrix(results []*models.TestResult, team *models.TeamProfile, threshold float64) []CompetencyComparison {
	var order []uuid.UUID
	names := make(map[uuid.UUID]string)
	for _, r := range results {
		for _, score := range r.CompetencyScores {
			if _, ok := names[score.CompetencyID]; !ok {
				order = append(order, score.CompetencyID)
				names[score.CompetencyID] = score.Name
			}
		}
	}

	comparisons := make([]CompetencyComparison, 0, len(order))
	for _, competencyID := range order {
		cc := CompetencyComparison{
			CompetencyID: competencyID.String(),
			Name:         names[competencyID],
			Scores:       make(map[string]float64, len(results)),
		}

		best := -1.0
		for _, r := range results {
			pct, _ := r.ScoreFor(competencyID)
			cc.Scores[r.ID.String()] = pct
			if pct > best {
				best = pct
				cc.BestResultID = r.ID.String()
			}
		}

		if team != nil {
			if sat, ok := team.Saturation[competencyID]; ok {
				cc.TeamSaturation = &sat
				cc.IsTeamGap = sat < threshold
			}
		}
		comparisons = append(comparisons, cc)
	}
	return comparisons
}

// buildGapCoverage reports, per team gap, the candidates at or above the
// coverage threshold plus the single best coverer among them. Candidates
// are walked in input order so the report is stable across runs.
func (s *Service) buildGapCoverage(results []*models.TestResult, competencies []CompetencyComparison) []GapCoverage {
	coverage := make([]GapCoverage, 0)
	for _, cc := range competencies {
		if !cc.IsTeamGap {
			continue
		}

		entry := GapCoverage{
			CompetencyID:      cc.CompetencyID,
			Name:              cc.Name,
			CoveringResultIDs: []string{},
		}
		best := -1.0
		for _, r := range results {
			resultID := r.ID.String()
			pct := cc.Scores[resultID]
			if pct < s.config.CoverageThreshold {
				continue
			}
			entry.CoveringResultIDs = append(entry.CoveringResultIDs, resultID)
			if pct > best {
				best = pct
				id := resultID
				entry.BestCovererID = &id
			}
		}
		coverage = append(coverage, entry)
	}
	return coverage
}

// buildPairs scores every unordered candidate pair by the share of team
// gaps the pair jointly covers. With zero gaps no pair can be distinguished,
// so the list stays empty rather than reporting a meaningless 100%.
func (s *Service) buildPairs(results []*models.TestResult, competencies []CompetencyComparison) []ComplementarityPair {
	var gaps []CompetencyComparison
	for _, cc := range competencies {
		if cc.IsTeamGap {
			gaps = append(gaps, cc)
		}
	}
	if len(gaps) == 0 {
		return []ComplementarityPair{}
	}

	covers := func(resultID string, cc CompetencyComparison) bool {
		return cc.Scores[resultID] >= s.config.CoverageThreshold
	}

	pairs := make([]ComplementarityPair, 0, len(results)*(len(results)-1)/2)
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			a := results[i].ID.String()
			b := results[j].ID.String()
			covered := 0
			for _, gap := range gaps {
				if covers(a, gap) || covers(b, gap) {
					covered++
				}
			}
			pairs = append(pairs, ComplementarityPair{
				ResultIDA:       a,
				ResultIDB:       b,
				CoveredGaps:     covered,
				TotalGaps:       len(gaps),
				Complementarity: float64(covered) / float64(len(gaps)) * 100,
			})
		}
	}
	return pairs
}
