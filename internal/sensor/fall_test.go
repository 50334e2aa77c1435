package sensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"telehealth/internal/sensor"
)

func TestMagnitudeG_AtRest(t *testing.T) {
	s := sensor.Sample{Z: sensor.StandardGravity}
	assert.InDelta(t, 1.0, s.MagnitudeG(), 1e-9)
}

func TestIsFall(t *testing.T) {
	tests := []struct {
		name   string
		sample sensor.Sample
		want   bool
	}{
		{"resting", sensor.Sample{Z: 9.8}, false},
		{"walking", sensor.Sample{X: 3, Y: 2, Z: 11}, false},
		{"impact", sensor.Sample{X: 20, Y: 15, Z: 12}, true},
		{"just under threshold", sensor.Sample{Z: 2.49 * sensor.StandardGravity}, false},
		{"negative axes", sensor.Sample{X: -25, Y: -5, Z: -3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sensor.IsFall(tt.sample, 2.5))
		})
	}
}

func TestDetectFall(t *testing.T) {
	samples := []sensor.Sample{
		{Z: 9.8},
		{X: 30, Z: 5},
		{X: 40, Z: 5},
	}

	s, g, ok := sensor.DetectFall(samples, 2.5)

	assert.True(t, ok)
	assert.Equal(t, samples[2], s)
	assert.InDelta(t, samples[2].MagnitudeG(), g, 1e-9)
}

func TestDetectFall_PeakReportedWithoutFall(t *testing.T) {
	samples := []sensor.Sample{{Z: 9.8}, {X: 3, Y: 2, Z: 11}, {Y: 9.8}}

	s, g, ok := sensor.DetectFall(samples, 2.5)

	assert.False(t, ok)
	assert.Equal(t, samples[1], s)
	assert.InDelta(t, samples[1].MagnitudeG(), g, 1e-9)
}

func TestDetectFall_None(t *testing.T) {
	_, _, ok := sensor.DetectFall([]sensor.Sample{{Z: 9.8}, {Y: 9.8}}, 2.5)
	assert.False(t, ok)

	_, _, ok = sensor.DetectFall(nil, 2.5)
	assert.False(t, ok)
}
