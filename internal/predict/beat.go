// SPDX-License-Identifier: MIT
package predict

import "math"

// BeatTracker debounces the per-frame beat flag, smooths the beat interval
// and predicts when the next beat lands.
//
// Before the first beat LastBeatTimeMs is 0 and the phase still advances from
// there; the resulting confidence is meaningless but harmless during warm-up.
type BeatTracker struct {
	t        Tuning
	state    BeatState
	tracking bool
	tempo    *ring // raw inter-beat gaps for the TempoEstimator
}

func NewBeatTracker(t Tuning) *BeatTracker {
	return &BeatTracker{
		t:     t,
		state: BeatState{BeatIntervalMs: t.InitialBeatInterval},
		tempo: newRing(t.TempoHistory),
	}
}

// Update advances the tracker to nowMs.
func (b *BeatTracker) Update(beat bool, nowMs float64) {
	s := &b.state

	if beat && nowMs-s.LastBeatTimeMs > b.t.BeatDebounceMs {
		gap := nowMs - s.LastBeatTimeMs
		if gap <= b.t.MaxBeatGapMs {
			a := b.t.BeatIntervalSmoothing
			s.BeatIntervalMs = clamp(a*s.BeatIntervalMs+(1-a)*gap, b.t.MinBeatIntervalMs, b.t.MaxBeatIntervalMs)
			b.tempo.Push(gap)
		}
		// Longer gaps mean the beat was lost; re-anchor without polluting
		// the interval estimate.
		s.LastBeatTimeMs = nowMs
		b.tracking = true
	}

	since := math.Max(0, nowMs-s.LastBeatTimeMs)
	phase := math.Mod(since, s.BeatIntervalMs) / s.BeatIntervalMs
	s.BeatConfidence = math.Max(0, (phase-0.8)*5)
	s.NextBeatPredictionMs = s.LastBeatTimeMs + s.BeatIntervalMs
	s.BeatImminent = s.NextBeatPredictionMs-nowMs < b.t.BeatImminentMs && s.BeatIntervalMs < 1000
}

func (b *BeatTracker) State() BeatState { return b.state }

// Tracking reports whether at least one beat has been recorded.
func (b *BeatTracker) Tracking() bool { return b.tracking }

// Intervals exposes the inter-beat gap history.
func (b *BeatTracker) Intervals() *ring { return b.tempo }
