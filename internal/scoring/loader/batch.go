package loader

import (
	"context"

	"github.com/google/uuid"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
)

// CompetencyLoader is the by-id-set loading contract the batch loader
// delegates to (satisfied by ResilientLoader).
type CompetencyLoader interface {
	LoadByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Competency, error)
}

// BatchLoader collects the distinct competency ids referenced by a list of
// answers and loads each of them at most once, in a single delegate call.
type BatchLoader struct {
	loader CompetencyLoader
	logger logger.Logger
}

func NewBatchLoader(l CompetencyLoader, log logger.Logger) *BatchLoader {
	return &BatchLoader{
		loader: l,
		logger: log.WithFields(map[string]interface{}{"component": "batch-loader"}),
	}
}

// LoadForAnswers returns a mapping competency id -> competency for every
// competency referenced by the given answers. Nil and skipped answers are
// ignored; an answer whose question/indicator/competency chain is partially
// missing is logged and skipped, never an error. With no referenced
// competencies the delegate is not called at all.
func (b *BatchLoader) LoadForAnswers(ctx context.Context, answers []*models.TestAnswer) (map[uuid.UUID]*models.Competency, error) {
	ids := make([]uuid.UUID, 0, len(answers))
	seen := make(map[uuid.UUID]bool, len(answers))

	for _, ans := range answers {
		if ans == nil || ans.Skipped {
			continue
		}
		competencyID, ok := ans.CompetencyID()
		if !ok {
			b.logger.Debug("answer with incomplete competency chain skipped", map[string]interface{}{
				"answerId": ans.ID.String(),
			})
			continue
		}
		if seen[competencyID] {
			continue
		}
		seen[competencyID] = true
		ids = append(ids, competencyID)
	}

	if len(ids) == 0 {
		return map[uuid.UUID]*models.Competency{}, nil
	}

	loaded, err := b.loader.LoadByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := loaded[id]; !ok {
			// Data-integrity signal or a fallback-cache miss; callers tolerate
			// sparse results.
			b.logger.Warn("requested competency missing from loaded set", map[string]interface{}{
				"competencyId": id.String(),
			})
		}
	}
	return loaded, nil
}
