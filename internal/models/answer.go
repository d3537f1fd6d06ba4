package models

import "github.com/google/uuid"

// TestAnswer is a single recorded answer of a test session. The chain
// Answer -> Question -> Indicator -> Competency attributes the answer's
// contribution to a competency; any link may be nil on dirty data and
// consumers must degrade to "no competency" instead of failing.
type TestAnswer struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"sessionId"`
	QuestionID   uuid.UUID `json:"questionId"`
	Skipped      bool      `json:"skipped"`
	Correct      bool      `json:"correct"`
	EarnedPoints float64   `json:"earnedPoints"`
	MaxPoints    float64   `json:"maxPoints"`

	Question *AssessmentQuestion `json:"-"`
}

// CompetencyID walks the answer chain and reports the owning competency id.
// The second return is false when any link is missing.
func (a *TestAnswer) CompetencyID() (uuid.UUID, bool) {
	if a == nil || a.Question == nil || a.Question.Indicator == nil || a.Question.Indicator.Competency == nil {
		return uuid.Nil, false
	}
	return a.Question.Indicator.Competency.ID, true
}
