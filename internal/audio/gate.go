// SPDX-License-Identifier: MIT
package audio

import "math"

func (e *Engine) EnableGate() {
	e.gateEnabled = true
}

func (e *Engine) DisableGate() {
	e.gateEnabled = false
}

// SetGateThreshold sets the gate level as a fraction of full scale, clamped
// to 0..1 where 0 is always open and 1 always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	threshold = max(0, min(1, threshold))
	e.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GetGateThreshold returns the gate level as a fraction of full scale.
func (e *Engine) GetGateThreshold() float64 {
	return float64(e.gateThreshold) / float64(math.MaxInt32)
}

// gateOpen reports whether the buffer's peak exceeds the threshold. A
// disabled gate is always open.
func (e *Engine) gateOpen(buffer []int32) bool {
	return !e.gateEnabled || peakAmplitude(buffer) > e.gateThreshold
}

// peakAmplitude is the largest absolute sample, computed without branches.
// MinInt32 saturates to MaxInt32.
func peakAmplitude(buffer []int32) int32 {
	var peak int32
	for _, sample := range buffer {
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		amplitude ^= amplitude >> 31 & (amplitude ^ math.MaxInt32)
		diff := amplitude - peak
		peak += diff & ^(diff >> 31)
	}
	return peak
}
