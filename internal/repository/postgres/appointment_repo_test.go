package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"telehealth/internal/domain"
)

func TestSetEnd(t *testing.T) {
	start := time.Date(2026, 5, 4, 9, 40, 0, 0, time.UTC)
	a := &domain.Appointment{ScheduledAt: start, DurationMinutes: 45}

	setEnd(a)

	assert.Equal(t, time.Date(2026, 5, 4, 10, 25, 0, 0, time.UTC), a.EndsAt)
}
