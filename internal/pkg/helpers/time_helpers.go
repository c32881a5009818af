package helpers

import (
	"time"

	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// ParseDuration parses a duration string, returns default duration on error.
// An empty string silently yields the default.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// DateOnly formats t as YYYY-MM-DD
func DateOnly(t time.Time) string {
	return t.Format(time.DateOnly)
}
