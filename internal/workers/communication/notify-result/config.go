package notifyresult

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	FromAddress string        `mapstructure:"from_address"`
	TopicARN    string        `mapstructure:"topic_arn"`
	Region      string        `mapstructure:"region"`
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		FromAddress: "noreply@example.com",
		Region:      "us-east-1",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FromAddress == "" {
		return fmt.Errorf("from_address is required")
	}
	return nil
}
