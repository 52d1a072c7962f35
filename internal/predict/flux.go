// SPDX-License-Identifier: MIT
package predict

// FluxTracker is an onset detector: it sums the positive per-band energy
// increases between consecutive frames.
type FluxTracker struct {
	previous BandEnergies
	primed   bool
	history  *ring
	scratch  []float64
}

func NewFluxTracker(t Tuning) *FluxTracker {
	return &FluxTracker{
		history: newRing(t.FluxWindow),
		scratch: make([]float64, t.FluxWindow),
	}
}

// Update returns the spectral flux of bands against the previous frame. The
// first call only primes the tracker and returns 0.
func (f *FluxTracker) Update(bands BandEnergies) float64 {
	if !f.primed {
		f.previous = bands
		f.primed = true
		return 0
	}

	var flux float64
	for i, v := range bands {
		if d := v - f.previous[i]; d > 0 {
			flux += d
		}
	}
	f.history.Push(flux)
	f.previous = bands
	return flux
}

// AverageFlux is the mean of the recent flux values, 0 if none.
func (f *FluxTracker) AverageFlux() float64 {
	return mean(f.history.Values(f.scratch))
}
