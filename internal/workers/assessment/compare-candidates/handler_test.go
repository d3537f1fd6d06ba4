package comparecandidates

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

// ==========================
// Mocks
// ==========================

type MockResultSource struct {
	mock.Mock
}

func (m *MockResultSource) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TestResult, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TestResult), args.Error(1)
}

type MockTemplateSource struct {
	mock.Mock
}

func (m *MockTemplateSource) FindByID(ctx context.Context, id uuid.UUID) (*models.TestTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestTemplate), args.Error(1)
}

type MockTeamSource struct {
	mock.Mock
}

func (m *MockTeamSource) FindByID(ctx context.Context, id uuid.UUID) (*models.TeamProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamProfile), args.Error(1)
}

// ==========================
// Fixtures
// ==========================

func floatPtr(f float64) *float64 {
	return &f
}

type fixture struct {
	templateID uuid.UUID
	teamID     uuid.UUID
	results    *MockResultSource
	templates  *MockTemplateSource
	teams      *MockTeamSource
	service    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		templateID: uuid.New(),
		teamID:     uuid.New(),
		results:    new(MockResultSource),
		templates:  new(MockTemplateSource),
		teams:      new(MockTeamSource),
	}
	f.service = NewService(ServiceDependencies{
		Logger:    logger.NewTestLogger(t),
		Results:   f.results,
		Templates: f.templates,
		Teams:     f.teams,
	}, LoadConfig())
	return f
}

func (f *fixture) result(name string, overall *float64, scores ...models.CompetencyScore) *models.TestResult {
	return &models.TestResult{
		ID:                uuid.New(),
		SessionID:         uuid.New(),
		TemplateID:        f.templateID,
		CandidateName:     name,
		OverallPercentage: overall,
		Passed:            overall != nil && *overall >= 70,
		CompetencyScores:  scores,
	}
}

func (f *fixture) teamFitTemplate() *models.TestTemplate {
	return &models.TestTemplate{
		ID:   f.templateID,
		Name: "Backend Team Fit",
		Goal: models.GoalTeamFit,
		Blueprint: &models.Blueprint{
			TeamID:     &f.teamID,
			TargetRole: "backend engineer",
		},
	}
}

func (f *fixture) inputFor(results ...*models.TestResult) *Input {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID.String())
	}
	return &Input{ResultIDs: ids, TemplateID: f.templateID.String()}
}

func (f *fixture) expectResults(results ...*models.TestResult) {
	f.results.On("FindByIDs", mock.Anything, mock.Anything).Return(results, nil)
}

// ==========================
// Validation
// ==========================

func TestService_CandidateCountBounds(t *testing.T) {
	f := newFixture(t)

	one := []string{uuid.New().String()}
	six := make([]string, 6)
	for i := range six {
		six[i] = uuid.New().String()
	}

	for _, ids := range [][]string{nil, one, six} {
		out, err := f.service.Execute(context.Background(), &Input{
			ResultIDs:  ids,
			TemplateID: f.templateID.String(),
		})

		require.Error(t, err)
		assert.Nil(t, out)
		stdErr, ok := err.(*errors.StandardError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
	}
	f.results.AssertNotCalled(t, "FindByIDs")
}

func TestService_DuplicateResultIDsRejected(t *testing.T) {
	f := newFixture(t)
	id := uuid.New().String()

	_, err := f.service.Execute(context.Background(), &Input{
		ResultIDs:  []string{id, id},
		TemplateID: f.templateID.String(),
	})

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
}

func TestService_MissingResultsReportedPrecisely(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	missingID := uuid.New()

	f.expectResults(alice)

	_, err := f.service.Execute(context.Background(), &Input{
		ResultIDs:  []string{alice.ID.String(), missingID.String()},
		TemplateID: f.templateID.String(),
	})

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResultNotFound, stdErr.Code)
	assert.Contains(t, stdErr.Details, missingID.String())
	assert.NotContains(t, stdErr.Details, alice.ID.String())
}

func TestService_TemplateNotFound(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	bob := f.result("Bob", floatPtr(70))

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(nil, sql.ErrNoRows)

	_, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTemplateNotFound, stdErr.Code)
}

func TestService_TemplateMismatchRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	bob := f.result("Bob", floatPtr(70))
	bob.TemplateID = uuid.New()

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)

	_, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTemplateMismatch, stdErr.Code)
	assert.Contains(t, stdErr.Details, bob.ID.String())
}

func TestService_NonTeamFitGoalRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	bob := f.result("Bob", floatPtr(70))

	template := f.teamFitTemplate()
	template.Goal = models.GoalGeneralAssessment

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(template, nil)

	_, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeGoalNotTeamFit, stdErr.Code)
}

// ==========================
// Ranking
// ==========================

func TestService_DenseRankingWithNullsLast(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(90))
	bob := f.result("Bob", floatPtr(90))
	carol := f.result("Carol", nil)

	f.expectResults(alice, bob, carol)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(nil, sql.ErrNoRows)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob, carol))

	require.NoError(t, err)
	require.Len(t, out.Candidates, 3)

	byName := make(map[string]CandidateSummary)
	for _, c := range out.Candidates {
		byName[c.CandidateName] = c
	}
	assert.Equal(t, 1, byName["Alice"].OverallRank)
	assert.Equal(t, 1, byName["Bob"].OverallRank)
	assert.Equal(t, 2, byName["Carol"].OverallRank)
	assert.Nil(t, byName["Carol"].OverallPercentage)
}

func TestService_AbsentMetricsStayNilInSummaries(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(75))
	alice.Metrics = models.ExtendedMetrics{DiversityRatio: floatPtr(0.6)}
	bob := f.result("Bob", floatPtr(65))

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(nil, sql.ErrNoRows)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	byName := make(map[string]CandidateSummary)
	for _, c := range out.Candidates {
		byName[c.CandidateName] = c
	}

	require.NotNil(t, byName["Alice"].DiversityRatio)
	assert.Equal(t, 0.6, *byName["Alice"].DiversityRatio)
	assert.Nil(t, byName["Bob"].DiversityRatio)
	assert.Nil(t, byName["Bob"].TeamFitMultiplier)

	// Candidate with the metric ranks ahead of the one without it.
	assert.Equal(t, 1, byName["Alice"].DiversityRank)
	assert.Equal(t, 2, byName["Bob"].DiversityRank)
}

// ==========================
// Competency matrix
// ==========================

func TestService_AbsentCompetencyScoreCoercedToZero(t *testing.T) {
	f := newFixture(t)
	sqlID := uuid.New()

	alice := f.result("Alice", floatPtr(80),
		models.CompetencyScore{CompetencyID: sqlID, Name: "SQL", Percentage: 85})
	bob := f.result("Bob", floatPtr(70))

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(nil, sql.ErrNoRows)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	require.Len(t, out.Competencies, 1)
	cc := out.Competencies[0]
	assert.Equal(t, 85.0, cc.Scores[alice.ID.String()])
	assert.Equal(t, 0.0, cc.Scores[bob.ID.String()])
	assert.Equal(t, alice.ID.String(), cc.BestResultID)
}

func TestService_TeamGapsFlaggedBelowThreshold(t *testing.T) {
	f := newFixture(t)
	gapID := uuid.New()
	strongID := uuid.New()

	alice := f.result("Alice", floatPtr(80),
		models.CompetencyScore{CompetencyID: gapID, Name: "Kubernetes", Percentage: 75},
		models.CompetencyScore{CompetencyID: strongID, Name: "Go", Percentage: 90})
	bob := f.result("Bob", floatPtr(70),
		models.CompetencyScore{CompetencyID: gapID, Name: "Kubernetes", Percentage: 40},
		models.CompetencyScore{CompetencyID: strongID, Name: "Go", Percentage: 60})

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(&models.TeamProfile{
		ID:        f.teamID,
		Active:    true,
		MemberIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Saturation: map[uuid.UUID]float64{
			gapID:    0.2,
			strongID: 0.9,
		},
	}, nil)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	assert.True(t, out.TeamAvailable)
	assert.Equal(t, 2, out.TeamSize)
	assert.Equal(t, 0.2, out.TeamSaturation[gapID.String()])

	byID := make(map[string]CompetencyComparison)
	for _, cc := range out.Competencies {
		byID[cc.CompetencyID] = cc
	}
	assert.True(t, byID[gapID.String()].IsTeamGap)
	assert.False(t, byID[strongID.String()].IsTeamGap)

	require.Len(t, out.GapCoverage, 1)
	gap := out.GapCoverage[0]
	assert.Equal(t, gapID.String(), gap.CompetencyID)
	assert.Equal(t, []string{alice.ID.String()}, gap.CoveringResultIDs)
	require.NotNil(t, gap.BestCovererID)
	assert.Equal(t, alice.ID.String(), *gap.BestCovererID)

	require.Len(t, out.Pairs, 1)
	pair := out.Pairs[0]
	assert.Equal(t, 1, pair.CoveredGaps)
	assert.Equal(t, 1, pair.TotalGaps)
	assert.Equal(t, 100.0, pair.Complementarity)
}

func TestService_UncoveredGapHasNoBestCoverer(t *testing.T) {
	f := newFixture(t)
	gapID := uuid.New()

	alice := f.result("Alice", floatPtr(60),
		models.CompetencyScore{CompetencyID: gapID, Name: "Rust", Percentage: 30})
	bob := f.result("Bob", floatPtr(55),
		models.CompetencyScore{CompetencyID: gapID, Name: "Rust", Percentage: 20})

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(&models.TeamProfile{
		ID:         f.teamID,
		Active:     true,
		Saturation: map[uuid.UUID]float64{gapID: 0.1},
	}, nil)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	require.Len(t, out.GapCoverage, 1)
	assert.Empty(t, out.GapCoverage[0].CoveringResultIDs)
	assert.Nil(t, out.GapCoverage[0].BestCovererID)

	require.Len(t, out.Pairs, 1)
	assert.Equal(t, 0.0, out.Pairs[0].Complementarity)
}

func TestService_ZeroGapsMeansNoPairs(t *testing.T) {
	f := newFixture(t)
	competencyID := uuid.New()

	alice := f.result("Alice", floatPtr(80),
		models.CompetencyScore{CompetencyID: competencyID, Name: "Go", Percentage: 90})
	bob := f.result("Bob", floatPtr(70),
		models.CompetencyScore{CompetencyID: competencyID, Name: "Go", Percentage: 85})

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(&models.TeamProfile{
		ID:         f.teamID,
		Active:     true,
		Saturation: map[uuid.UUID]float64{competencyID: 0.9},
	}, nil)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	assert.Empty(t, out.GapCoverage)
	// A saturated team has no gaps to cover; pairwise complementarity would
	// be vacuous, so no pairs are reported at all.
	assert.Empty(t, out.Pairs)
}

// ==========================
// Team context
// ==========================

func TestService_LegacyBlueprintParsed(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	bob := f.result("Bob", floatPtr(70))

	template := &models.TestTemplate{
		ID:   f.templateID,
		Goal: models.GoalTeamFit,
		LegacyBlueprint: map[string]interface{}{
			"teamId":              f.teamID.String(),
			"targetRole":          "data engineer",
			"saturationThreshold": "0.4",
		},
	}

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(template, nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(nil, sql.ErrNoRows)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	assert.Equal(t, f.teamID.String(), out.TeamID)
	assert.Equal(t, "data engineer", out.TargetRole)
	require.NotNil(t, out.SaturationThreshold)
	assert.Equal(t, 0.4, *out.SaturationThreshold)
}

func TestService_MalformedLegacyBlueprintDegrades(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	bob := f.result("Bob", floatPtr(70))

	template := &models.TestTemplate{
		ID:   f.templateID,
		Goal: models.GoalTeamFit,
		LegacyBlueprint: map[string]interface{}{
			"teamId":              "not-a-uuid",
			"saturationThreshold": "high",
		},
	}

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(template, nil)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	assert.Empty(t, out.TeamID)
	assert.Nil(t, out.SaturationThreshold)
	assert.False(t, out.TeamAvailable)
	f.teams.AssertNotCalled(t, "FindByID")
}

func TestService_TeamFetchFailureDegradesToCandidateOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	bob := f.result("Bob", floatPtr(70))

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(nil, assert.AnError)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	assert.False(t, out.TeamAvailable)
	assert.Equal(t, 0, out.TeamSize)
	assert.Empty(t, out.TeamSaturation)
	assert.Empty(t, out.GapCoverage)
	assert.Empty(t, out.Pairs)
}

func TestService_InactiveTeamTreatedAsUnavailable(t *testing.T) {
	f := newFixture(t)
	alice := f.result("Alice", floatPtr(80))
	bob := f.result("Bob", floatPtr(70))

	f.expectResults(alice, bob)
	f.templates.On("FindByID", mock.Anything, f.templateID).Return(f.teamFitTemplate(), nil)
	f.teams.On("FindByID", mock.Anything, f.teamID).Return(&models.TeamProfile{
		ID:     f.teamID,
		Active: false,
	}, nil)

	out, err := f.service.Execute(context.Background(), f.inputFor(alice, bob))

	require.NoError(t, err)
	assert.False(t, out.TeamAvailable)
}

// ==========================
// Input schema
// ==========================

func TestGetInputSchema(t *testing.T) {
	schema := GetInputSchema()
	assert.Equal(t, "object", schema.Type)
	assert.Contains(t, schema.Required, "resultIds")
	assert.Contains(t, schema.Required, "templateId")
}
