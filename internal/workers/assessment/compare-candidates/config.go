// internal/workers/assessment/compare-candidates/config.go
package comparecandidates

import "time"

const (
	MinCandidates = 2
	MaxCandidates = 5
)

type Config struct {
	Timeout time.Duration

	// DiversityThreshold flags a competency as a team gap when its team
	// saturation is strictly below it.
	DiversityThreshold float64

	// CoverageThreshold is the minimum candidate percentage that counts as
	// covering a gap.
	CoverageThreshold float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            30 * time.Second,
		DiversityThreshold: 0.5,
		CoverageThreshold:  50.0,
	}
}
