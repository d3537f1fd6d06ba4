package models

import "github.com/google/uuid"

// Taxonomy identifies an external competency standard.
type Taxonomy string

const (
	TaxonomyONet Taxonomy = "onet"
	TaxonomyESCO Taxonomy = "esco"
)

// StandardCode is a cross-reference from an internal competency to an
// external taxonomy entry.
type StandardCode struct {
	Taxonomy Taxonomy `json:"taxonomy"`
	Code     string   `json:"code"`
	Title    string   `json:"title"`
}

// Competency is a long-lived catalog entity. Immutable during scoring.
type Competency struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Category      string         `json:"category"`
	Active        bool           `json:"active"`
	StandardCodes []StandardCode `json:"standardCodes,omitempty"`
}

// BehavioralIndicator belongs to exactly one competency and groups
// assessment questions. Weight is meaningful only within its owning
// competency.
type BehavioralIndicator struct {
	ID           uuid.UUID `json:"id"`
	CompetencyID uuid.UUID `json:"competencyId"`
	Name         string    `json:"name"`
	Weight       float64   `json:"weight"`
	Active       bool      `json:"active"`
	OrderIndex   int       `json:"orderIndex"`

	Competency *Competency `json:"-"`
}

// AssessmentQuestion belongs to one behavioral indicator.
type AssessmentQuestion struct {
	ID          uuid.UUID `json:"id"`
	IndicatorID uuid.UUID `json:"indicatorId"`
	Text        string    `json:"text"`
	Active      bool      `json:"active"`
	Difficulty  string    `json:"difficulty"`
	Type        string    `json:"type"`

	Indicator *BehavioralIndicator `json:"-"`
}
