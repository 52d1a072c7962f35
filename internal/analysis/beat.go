// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"time"

	applog "audiointel/internal/log"
)

// baselineSmoothing is the weight an onset baseline keeps per frame.
const baselineSmoothing = 0.9

// BeatDetector flags onsets in the low-end energy: the energy must exceed an
// absolute threshold and be ratio times its running baseline, and at least
// cooldown must have passed since the previous onset.
type BeatDetector struct {
	threshold  float64
	ratio      float64
	cooldownMs float64

	baseline float64
	lastBeat float64
	fired    bool
}

func NewBeatDetector(threshold, ratio float64, cooldown time.Duration) *BeatDetector {
	applog.Debugf("Analysis: BeatDetector threshold %.3f, ratio %.2f, cooldown %s", threshold, ratio, cooldown)
	return &BeatDetector{
		threshold:  threshold,
		ratio:      ratio,
		cooldownMs: float64(cooldown) / float64(time.Millisecond),
	}
}

// Detect feeds one frame's energy and reports whether it is an onset.
func (d *BeatDetector) Detect(energy, timestampMs float64) bool {
	beat := energy > d.threshold &&
		(d.baseline == 0 || energy > d.baseline*d.ratio) &&
		(!d.fired || timestampMs-d.lastBeat >= d.cooldownMs)

	if beat {
		d.fired = true
		d.lastBeat = timestampMs
	}
	d.baseline = d.baseline*baselineSmoothing + energy*(1-baselineSmoothing)
	return beat
}

// Reset forgets the baseline and the last onset.
func (d *BeatDetector) Reset() {
	d.baseline, d.lastBeat, d.fired = 0, 0, false
}

// calculateRMS returns the RMS of the buffer normalized to full scale.
func calculateRMS(buffer []int32) float64 {
	if len(buffer) == 0 {
		return 0
	}
	var sumSquare float64
	for _, sample := range buffer {
		s := float64(sample) / fullScale
		sumSquare += s * s
	}
	return math.Sqrt(sumSquare / float64(len(buffer)))
}
