// internal/workers/assistant/analyze-message/config.go
package analyzemessage

import "time"

type Config struct {
	Timeout        time.Duration
	ValidateOutput bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		ValidateOutput: true,
	}
}
