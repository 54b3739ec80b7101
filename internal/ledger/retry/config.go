package retry

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Kind selects a retry strategy
type Kind string

const (
	KindFixed       Kind = "fixed"
	KindExponential Kind = "exponential"
	KindNone        Kind = "none"
)

// Config holds retry configuration
type Config struct {
	Kind         Kind          // Strategy to build
	MaxAttempts  int           // Maximum number of attempts (N)
	InitialDelay time.Duration // Delay between attempts (first delay for exponential)
	MaxDelay     time.Duration // Upper bound for exponential delays
}

// TransactionDefaults polls for an ordinary transaction: 20 attempts, 1s apart
func TransactionDefaults() Config {
	return Config{
		Kind:         KindFixed,
		MaxAttempts:  20,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
	}
}

// DeploymentDefaults polls for a contract creation: 50 attempts, 2s apart
func DeploymentDefaults() Config {
	return Config{
		Kind:         KindFixed,
		MaxAttempts:  50,
		InitialDelay: 2 * time.Second,
		MaxDelay:     2 * time.Second,
	}
}

// LoadConfig overlays environment variables named <prefix>STRATEGY,
// <prefix>MAX_ATTEMPTS, <prefix>DELAY_MS and <prefix>MAX_DELAY_MS on defaults
func LoadConfig(prefix string, defaults Config) Config {
	cfg := defaults
	if kind := strings.ToLower(os.Getenv(prefix + "STRATEGY")); kind != "" {
		switch Kind(kind) {
		case KindFixed, KindExponential, KindNone:
			cfg.Kind = Kind(kind)
		}
	}
	cfg.MaxAttempts = getEnvAsInt(prefix+"MAX_ATTEMPTS", defaults.MaxAttempts)
	cfg.InitialDelay = time.Duration(getEnvAsInt(prefix+"DELAY_MS", int(defaults.InitialDelay.Milliseconds()))) * time.Millisecond
	cfg.MaxDelay = time.Duration(getEnvAsInt(prefix+"MAX_DELAY_MS", int(defaults.MaxDelay.Milliseconds()))) * time.Millisecond
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	return cfg
}

// Helper: get int from env
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
