package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodDays(t *testing.T) {
	assert.Equal(t, 7, PeriodDays("7d"))
	assert.Equal(t, 30, PeriodDays("30d"))
	assert.Equal(t, 90, PeriodDays("90d"))

	// Unknown selectors silently fall back to the 7-day window.
	assert.Equal(t, 7, PeriodDays("1y"))
	assert.Equal(t, 7, PeriodDays(""))
	assert.Equal(t, 7, PeriodDays("7D"))
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC), PeriodStart("7d", now))
	assert.Equal(t, time.Date(2025, 5, 16, 12, 0, 0, 0, time.UTC), PeriodStart("30d", now))
	assert.Equal(t, time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC), PeriodStart("90d", now))
	assert.Equal(t, time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC), PeriodStart("bogus", now))
}
