package config

import "time"

// Configfile represents the structure of the backoffice.yaml configuration file.
// Zero values leave the corresponding default in place.
type Configfile struct {
	API struct {
		BaseURL   string        `yaml:"baseURL"`
		Token     string        `yaml:"token"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit float64       `yaml:"rateLimit"`
		Burst     int           `yaml:"burst"`
	} `yaml:"api"`
	Cache struct {
		StaleTime time.Duration `yaml:"staleTime"`
		GCTime    time.Duration `yaml:"gcTime"`
	} `yaml:"cache"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	Telemetry struct {
		Tracing bool `yaml:"tracing"`
	} `yaml:"telemetry"`
}

// envOverrides lists the environment variables read on top of the file, without
// the BACKOFFICE_ prefix. Unset variables keep the value already in the struct.
type envOverrides struct {
	BaseURL   string        `env:"API_URL"`
	Token     string        `env:"API_TOKEN"`
	Timeout   time.Duration `env:"API_TIMEOUT"`
	RateLimit float64       `env:"RATE_LIMIT"`
	Burst     int           `env:"RATE_BURST"`
	StaleTime time.Duration `env:"STALE_TIME"`
	GCTime    time.Duration `env:"GC_TIME"`
	LogLevel  string        `env:"LOG_LEVEL"`
	LogJSON   bool          `env:"LOG_JSON"`
	Tracing   bool          `env:"TRACING"`
}
