// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	APIs     APIsConfig              `mapstructure:"apis"`
	Analysis AnalysisConfig          `mapstructure:"analysis"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"genai"`
}

// ActionPreset is one action/weight pair contributed by a business-field
// preset table entry.
type ActionPreset struct {
	Name   string  `mapstructure:"name"`
	Weight float64 `mapstructure:"weight"`
}

// AnalysisConfig holds the message-analysis pipeline settings. Everything
// here is read once at startup and treated as immutable during request
// handling.
type AnalysisConfig struct {
	AllowedFlags   []string `mapstructure:"allowed_flags"`
	AllowedActions []string `mapstructure:"allowed_actions"`

	MultiTenant  bool   `mapstructure:"multi_tenant"`
	ActiveSiteID string `mapstructure:"active_site_id"`
	AutoApply    bool   `mapstructure:"auto_apply"`
	Debug        bool   `mapstructure:"debug"`

	CollabTimeout int `mapstructure:"collab_timeout"` // milliseconds
	MaxSubjects   int `mapstructure:"max_subjects"`
	CacheTTL      int `mapstructure:"cache_ttl"` // seconds, 0 disables caching

	ActionPresets map[string][]ActionPreset `mapstructure:"action_presets"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
