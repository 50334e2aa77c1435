// Package sensor interprets accelerometer samples sent by the mobile app.
package sensor

import "math"

// StandardGravity converts m/s² to g.
const StandardGravity = 9.80665

// Sample is one accelerometer reading in m/s².
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MagnitudeG returns the acceleration magnitude of s in g.
func (s Sample) MagnitudeG() float64 {
	return math.Sqrt(s.X*s.X+s.Y*s.Y+s.Z*s.Z) / StandardGravity
}

// IsFall reports whether a single sample exceeds the threshold, in g.
// It is a fixed threshold check with no signal processing.
func IsFall(s Sample, thresholdG float64) bool {
	return s.MagnitudeG() > thresholdG
}

// DetectFall returns the sample with the largest magnitude in the batch, that
// magnitude in g, and whether it exceeds the threshold.
func DetectFall(samples []Sample, thresholdG float64) (peak Sample, peakG float64, fell bool) {
	for _, s := range samples {
		if g := s.MagnitudeG(); g > peakG {
			peak, peakG = s, g
		}
	}
	return peak, peakG, peakG > thresholdG
}
