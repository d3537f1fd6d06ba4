package resolvebenchmarks

import (
	"context"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
	"assessment-workers/internal/scoring/onet"
)

type Input struct {
	SOCCode string `json:"socCode"`
}

// ResolvedCompetency is one external benchmark resolved to an internal
// competency.
type ResolvedCompetency struct {
	CompetencyID   string  `json:"competencyId"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	BenchmarkName  string  `json:"benchmarkName"`
	BenchmarkScore float64 `json:"benchmarkScore"`
}

type Output struct {
	SOCCode             string               `json:"socCode"`
	OccupationTitle     string               `json:"occupationTitle,omitempty"`
	Resolved            []ResolvedCompetency `json:"resolved"`
	BenchmarkCount      int                  `json:"benchmarkCount"`
	UnmatchedBenchmarks []string             `json:"unmatchedBenchmarks,omitempty"`
}

// ProfileProvider fetches external occupational skill profiles.
type ProfileProvider interface {
	GetOccupationProfile(ctx context.Context, socCode string) (*onet.OccupationProfile, error)
}

// CompetencyCatalog is the internal catalog queried during resolution.
type CompetencyCatalog interface {
	FindActiveByNames(ctx context.Context, names []string) ([]*models.Competency, error)
	FindAllActive(ctx context.Context) ([]*models.Competency, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Profiles ProfileProvider
	Catalog  CompetencyCatalog
}
