// SPDX-License-Identifier: MIT
package predict

// EnergyHistory keeps the total energy of recent frames in a short (~2 s)
// and a long (~10 s) window.
type EnergyHistory struct {
	short, long  *ring
	risingWindow int
	risingRatio  float64
	scratch      []float64
}

func NewEnergyHistory(t Tuning) *EnergyHistory {
	return &EnergyHistory{
		short:        newRing(t.ShortWindow),
		long:         newRing(t.LongWindow),
		risingWindow: t.RisingWindow,
		risingRatio:  t.RisingRatio,
		scratch:      make([]float64, max(t.ShortWindow, t.LongWindow)),
	}
}

// Push appends value to both windows.
func (h *EnergyHistory) Push(value float64) {
	h.short.Push(value)
	h.long.Push(value)
}

func (h *EnergyHistory) ShortAverage() float64 { return mean(h.short.Values(h.scratch)) }
func (h *EnergyHistory) LongAverage() float64  { return mean(h.long.Values(h.scratch)) }

// Variance is the population variance of the short window.
func (h *EnergyHistory) Variance() float64 { return popVariance(h.short.Values(h.scratch)) }

func (h *EnergyHistory) ShortLen() int { return h.short.Len() }
func (h *EnergyHistory) LongLen() int  { return h.long.Len() }

// Rising reports whether the mean of the newest risingWindow samples exceeds
// the mean of the risingWindow samples before them by risingRatio.
func (h *EnergyHistory) Rising() bool {
	w := h.risingWindow
	if h.short.Len() < 2*w {
		return false
	}
	tail := h.short.Tail(h.scratch[:2*w])
	prior, recent := mean(tail[:w]), mean(tail[w:])
	return recent > h.risingRatio*prior
}
