// SPDX-License-Identifier: MIT
package predict

import "testing"

func TestEnergyHistoryNeverExceedsCapacity(t *testing.T) {
	tuning := DefaultTuning()
	h := NewEnergyHistory(tuning)

	for i := range 10000 {
		h.Push(float64(i % 17))
		if h.ShortLen() > tuning.ShortWindow {
			t.Fatalf("short window grew to %d (cap %d)", h.ShortLen(), tuning.ShortWindow)
		}
		if h.LongLen() > tuning.LongWindow {
			t.Fatalf("long window grew to %d (cap %d)", h.LongLen(), tuning.LongWindow)
		}
	}
	if h.ShortLen() != tuning.ShortWindow || h.LongLen() != tuning.LongWindow {
		t.Errorf("windows not full: short=%d long=%d", h.ShortLen(), h.LongLen())
	}
}

func TestEnergyHistoryAverages(t *testing.T) {
	h := NewEnergyHistory(DefaultTuning())

	if h.ShortAverage() != 0 || h.LongAverage() != 0 || h.Variance() != 0 {
		t.Fatal("empty history should report zero statistics")
	}

	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		h.Push(v)
	}
	if got := h.ShortAverage(); !approxEqual(got, 5, 1e-12) {
		t.Errorf("ShortAverage() = %v, want 5", got)
	}
	if got := h.LongAverage(); !approxEqual(got, 5, 1e-12) {
		t.Errorf("LongAverage() = %v, want 5", got)
	}
	// Population variance of the classic example is exactly 4.
	if got := h.Variance(); !approxEqual(got, 4, 1e-12) {
		t.Errorf("Variance() = %v, want 4", got)
	}
}

func TestEnergyHistoryShortWindowForgets(t *testing.T) {
	tuning := DefaultTuning()
	h := NewEnergyHistory(tuning)

	for range tuning.LongWindow - tuning.ShortWindow {
		h.Push(10)
	}
	for range tuning.ShortWindow {
		h.Push(1)
	}

	if got := h.ShortAverage(); !approxEqual(got, 1, 1e-12) {
		t.Errorf("ShortAverage() = %v, want 1", got)
	}
	want := (10*float64(tuning.LongWindow-tuning.ShortWindow) + float64(tuning.ShortWindow)) / float64(tuning.LongWindow)
	if got := h.LongAverage(); !approxEqual(got, want, 1e-9) {
		t.Errorf("LongAverage() = %v, want %v", got, want)
	}
}

func TestEnergyHistoryRising(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   bool
	}{
		{"Too few samples", repeat(1, 10, 2, 9), false},
		{"Flat", repeat(1, 10, 1, 10), false},
		{"Step up", repeat(1, 10, 2, 10), true},
		{"Below ratio", repeat(1, 10, 1.05, 10), false},
		{"Step down", repeat(2, 10, 1, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEnergyHistory(DefaultTuning())
			for _, v := range tt.values {
				h.Push(v)
			}
			if got := h.Rising(); got != tt.want {
				t.Errorf("Rising() = %v, want %v", got, tt.want)
			}
		})
	}
}

// repeat returns n1 copies of a followed by n2 copies of b.
func repeat(a float64, n1 int, b float64, n2 int) []float64 {
	out := make([]float64, 0, n1+n2)
	for range n1 {
		out = append(out, a)
	}
	for range n2 {
		out = append(out, b)
	}
	return out
}
