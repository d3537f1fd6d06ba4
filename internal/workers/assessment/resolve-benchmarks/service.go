package resolvebenchmarks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/models"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	profiles ProfileProvider
	catalog  CompetencyCatalog
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		profiles: deps.Profiles,
		catalog:  deps.Catalog,
	}
}

// Execute resolves the skill benchmarks of an occupational profile to
// internal competencies: exact case-insensitive lookup over every known
// identifier first, fuzzy string matching as fallback, dedup by competency
// id across the whole profile.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	socCode := strings.TrimSpace(input.SOCCode)
	if socCode == "" {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeBlankTaxonomyCode,
			Message:   "Occupational code must not be blank",
			Retryable: false,
			Timestamp: time.Now(),
		}
	}

	profile, err := s.profiles.GetOccupationProfile(ctx, socCode)
	if err != nil {
		return nil, errors.NewTaxonomyFetchFailedError(socCode, err)
	}
	if profile == nil || len(profile.Benchmarks) == 0 {
		s.logger.Info("no occupational profile to resolve", map[string]interface{}{
			"socCode": socCode,
		})
		return &Output{SOCCode: socCode, Resolved: []ResolvedCompetency{}}, nil
	}

	distinctNames := make([]string, 0, len(profile.Benchmarks))
	seenNames := make(map[string]bool, len(profile.Benchmarks))
	for _, b := range profile.Benchmarks {
		name := strings.ToLower(strings.TrimSpace(b.Name))
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true
		distinctNames = append(distinctNames, name)
	}

	candidates, err := s.loadCandidates(ctx, distinctNames)
	if err != nil {
		return nil, errors.NewCompetencyLoadFailedError(err)
	}

	lookup := buildLookup(candidates)
	keys := make([]string, 0, len(lookup))
	for k := range lookup {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		resolved  []ResolvedCompetency
		unmatched []string
		seenIDs   = make(map[string]bool)
	)
	for _, b := range profile.Benchmarks {
		key := strings.ToLower(strings.TrimSpace(b.Name))
		if key == "" {
			continue
		}

		matches := lookup[key]
		strategy := "exact"
		if len(matches) == 0 {
			if best, ok := fuzzyBestMatch(key, keys); ok {
				matches = lookup[best]
				strategy = "fuzzy"
			}
		}
		if len(matches) == 0 {
			unmatched = append(unmatched, b.Name)
			continue
		}

		hit := false
		for _, c := range matches {
			if seenIDs[c.ID.String()] {
				continue
			}
			seenIDs[c.ID.String()] = true
			resolved = append(resolved, ResolvedCompetency{
				CompetencyID:   c.ID.String(),
				Name:           c.Name,
				Category:       c.Category,
				BenchmarkName:  b.Name,
				BenchmarkScore: b.Score,
			})
			hit = true
		}
		if hit {
			metrics.BenchmarksResolved.WithLabelValues(strategy).Inc()
		}
	}

	s.logger.Info("benchmark resolution complete", map[string]interface{}{
		"socCode":        socCode,
		"benchmarkCount": len(profile.Benchmarks),
		"resolvedCount":  len(resolved),
		"unmatchedCount": len(unmatched),
	})

	if resolved == nil {
		resolved = []ResolvedCompetency{}
	}
	return &Output{
		SOCCode:             socCode,
		OccupationTitle:     profile.Title,
		Resolved:            resolved,
		BenchmarkCount:      len(profile.Benchmarks),
		UnmatchedBenchmarks: unmatched,
	}, nil
}

// loadCandidates runs the two-phase catalog fetch: a narrow name query
// first, then the full active catalog when the narrow query matched fewer
// competencies than there are distinct benchmark names. The widening is a
// deliberate heuristic that over-fetches rather than under-resolves, since
// the name query cannot see external codes and titles.
func (s *Service) loadCandidates(ctx context.Context, distinctNames []string) ([]*models.Competency, error) {
	byName, err := s.catalog.FindActiveByNames(ctx, distinctNames)
	if err != nil {
		return nil, err
	}
	if len(byName) >= len(distinctNames) {
		return byName, nil
	}

	s.logger.Debug("narrow name query under-matched, loading full catalog", map[string]interface{}{
		"requested": len(distinctNames),
		"matched":   len(byName),
	})
	return s.catalog.FindAllActive(ctx)
}

// buildLookup keys every candidate by each identifier it is known under:
// its own lowercased name plus the code and title of each external standard
// cross-reference. Values are slices because denormalized external titles
// can collide across competencies.
func buildLookup(candidates []*models.Competency) map[string][]*models.Competency {
	lookup := make(map[string][]*models.Competency, len(candidates)*2)
	add := func(key string, c *models.Competency) {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		lookup[key] = append(lookup[key], c)
	}

	for _, c := range candidates {
		add(c.Name, c)
		for _, sc := range c.StandardCodes {
			add(sc.Code, c)
			add(sc.Title, c)
		}
	}
	return lookup
}

func fuzzyBestMatch(key string, keys []string) (string, bool) {
	matches := fuzzy.RankFindNormalizedFold(key, keys)
	if len(matches) == 0 {
		return "", false
	}
	sort.Sort(matches)
	return matches[0].Target, true
}
