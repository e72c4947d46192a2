// Package config loads typed configuration from environment variables.
//
// It combines godotenv (optional .env files) with caarlos0/env struct
// parsing, and caches each configuration type so parsing happens at most
// once per process:
//
//	type WizardConfig struct {
//	    DebounceWindow time.Duration `env:"LICENSEKIT_DEBOUNCE_WINDOW" envDefault:"300ms"`
//	    StepFreshness  time.Duration `env:"LICENSEKIT_STEP_FRESHNESS" envDefault:"1s"`
//	}
//
//	var cfg WizardConfig
//	config.MustLoad(&cfg)
//
// Tests that mutate the environment can call ResetCache or ForceReload to
// drop the cached copy.
package config
