package utils

import (
	"os"
	"strconv"
	"time"
)

// MinutesFromEnv reads a whole-minute duration from an environment
// variable, falling back to def minutes when unset or unparsable. The
// dedup and live windows both default to 5 minutes but are configured
// independently.
func MinutesFromEnv(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(def) * time.Minute
}
