// internal/workers/assessment/resolve-benchmarks/config.go
package resolvebenchmarks

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
