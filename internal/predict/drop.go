// SPDX-License-Identifier: MIT
package predict

// dropInput is what the predictor looks at for one frame.
type dropInput struct {
	energy   float64
	shortAvg float64
	rising   bool
	avgFlux  float64
}

// DropPredictor tracks buildups and estimates how likely a drop is. When the
// energy spikes after a convincing buildup it fires exactly one drop.
type DropPredictor struct {
	t     Tuning
	state BuildupState
}

func NewDropPredictor(t Tuning) *DropPredictor {
	return &DropPredictor{t: t}
}

// Update advances the predictor. It returns true on the frame a drop fires;
// the returned intensity is the probability that was reached before reset.
func (d *DropPredictor) Update(in dropInput, nowMs float64) (fired bool, intensity float64) {
	s := &d.state

	switch {
	case in.rising && in.energy > 0.5*in.shortAvg:
		if !s.IsBuildup {
			s.IsBuildup = true
			s.BuildupStartTimeMs = nowMs
			s.BuildupEnergyAtStart = in.energy
		}
		duration := nowMs - s.BuildupStartTimeMs
		if duration > d.t.BuildupMinMs && duration < d.t.BuildupMaxMs {
			growth := 1.0
			if s.BuildupEnergyAtStart > 0 {
				growth = in.energy / s.BuildupEnergyAtStart
			}
			p := min(1, duration/d.t.BuildupRampMs*growth*0.5)
			if in.avgFlux > d.t.FluxBoostThreshold {
				p = min(1, p+d.t.FluxBoost)
			}
			s.DropProbability = clamp(p, 0, 1)
			s.PredictedDropTimeMs = s.BuildupStartTimeMs + d.t.DropLeadMs
		}

	case in.energy > d.t.DropSpikeRatio*in.shortAvg:
		if s.IsBuildup && s.DropProbability > d.t.DropFireProbability {
			fired, intensity = true, s.DropProbability
		}
		s.IsBuildup = false
		s.DropProbability = 0

	case in.energy < 0.7*in.shortAvg:
		s.IsBuildup = false
		s.DropProbability = clamp(s.DropProbability*d.t.DropDecay, 0, 1)
	}

	return fired, intensity
}

func (d *DropPredictor) State() BuildupState { return d.state }
