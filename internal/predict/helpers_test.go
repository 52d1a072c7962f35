// SPDX-License-Identifier: MIT
package predict

import (
	"math"
	"strconv"
)

const frameMs = 1000.0 / 60.0

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fixedRand returns the same values on every call.
type fixedRand struct {
	f     float64
	last  bool // IntN returns n-1 instead of 0
	calls int
}

func (r *fixedRand) Float64() float64 {
	r.calls++
	return r.f
}

func (r *fixedRand) IntN(n int) int {
	r.calls++
	if r.last {
		return n - 1
	}
	return 0
}

// mixFrame builds a frame whose bass, mid and brilliance scale with s.
// Brilliance is twice the bass so the material reads as treble-heavy.
func mixFrame(ts, s, amplitude float64) FeatureFrame {
	var bands BandEnergies
	bands[Bass] = 0.25 * s
	bands[Mid] = 1.0 * s
	bands[Brilliance] = 0.5 * s
	return FeatureFrame{TimestampMs: ts, Amplitude: amplitude, Bands: bands}
}

// dropScenario is a steady verse, an exponential treble-heavy rise lasting
// three seconds and a loud plateau. It returns the frames and the index of
// the first plateau frame.
//
// The rise is exponential, not linear: a buildup only counts while the short
// average keeps outpacing the long one by the rising ratio, and a linear ramp
// of the same span stops doing so after about 40 frames, long before the
// 2000ms buildup minimum.
func dropScenario() ([]FeatureFrame, int) {
	const (
		steady  = 700
		rise    = 180
		plateau = 120
		growth  = 1.015
	)
	frames := make([]FeatureFrame, 0, steady+rise+plateau)
	ts := 0.0
	next := func() float64 {
		ts += frameMs
		return ts
	}
	for range steady {
		frames = append(frames, mixFrame(next(), 1, 0.3))
	}
	s := 1.0
	for range rise {
		s *= growth
		frames = append(frames, mixFrame(next(), s, 0.3))
	}
	for range plateau {
		frames = append(frames, mixFrame(next(), s, 0.8))
	}
	return frames, steady + rise
}
