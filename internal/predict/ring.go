// SPDX-License-Identifier: MIT
package predict

import "gonum.org/v1/gonum/stat"

// ring is a fixed-capacity FIFO of float64 samples. Pushing into a full ring
// evicts the oldest sample. It never allocates after construction.
type ring struct {
	buf   []float64
	start int // index of the oldest sample
	n     int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]float64, capacity)}
}

func (r *ring) Push(v float64) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) Len() int { return r.n }
func (r *ring) Cap() int { return len(r.buf) }

// At returns the i-th oldest sample.
func (r *ring) At(i int) float64 {
	return r.buf[(r.start+i)%len(r.buf)]
}

// Tail copies the newest len(dst) samples into dst in chronological order
// and returns the filled prefix. It returns fewer samples when the ring holds
// less than len(dst).
func (r *ring) Tail(dst []float64) []float64 {
	k := len(dst)
	if k > r.n {
		k = r.n
	}
	offset := r.n - k
	for i := range k {
		dst[i] = r.At(offset + i)
	}
	return dst[:k]
}

// Values copies every sample into dst, which must have capacity Cap().
func (r *ring) Values(dst []float64) []float64 {
	return r.Tail(dst[:r.n])
}

// mean returns the arithmetic mean of xs, or 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// popVariance returns the population variance of xs, or 0 for an empty slice.
func popVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.PopVariance(xs, nil)
}
