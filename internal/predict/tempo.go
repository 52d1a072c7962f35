// SPDX-License-Identifier: MIT
package predict

// TempoEstimator converts the recent inter-beat gaps into a smoothed BPM.
type TempoEstimator struct {
	t       Tuning
	state   TempoState
	scratch []float64
}

func NewTempoEstimator(t Tuning) *TempoEstimator {
	return &TempoEstimator{
		t:       t,
		state:   TempoState{BPM: t.DefaultBPM},
		scratch: make([]float64, t.TempoHistory),
	}
}

// Update re-estimates the tempo from intervals. Implausible estimates are
// dropped and the previous tempo is kept.
func (e *TempoEstimator) Update(intervals *ring) {
	n := intervals.Len()
	if n < e.t.MinTempoSamples {
		return
	}
	avg := mean(intervals.Values(e.scratch))
	if avg <= 0 {
		return
	}
	bpm := 60000 / avg
	if bpm < e.t.MinBPM || bpm > e.t.MaxBPM {
		return
	}
	a := e.t.TempoSmoothing
	e.state.BPM = a*e.state.BPM + (1-a)*bpm
	e.state.Confidence = min(1, float64(n)/float64(e.t.TempoFullConfAt))
}

func (e *TempoEstimator) State() TempoState { return e.state }
