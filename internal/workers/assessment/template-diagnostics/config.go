// internal/workers/assessment/template-diagnostics/config.go
package templatediagnostics

import "time"

type Config struct {
	Timeout time.Duration

	// DefaultRequiredPerIndicator applies when a template does not carry its
	// own per-indicator question requirement.
	DefaultRequiredPerIndicator int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:                     30 * time.Second,
		DefaultRequiredPerIndicator: 3,
	}
}
