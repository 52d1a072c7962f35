// SPDX-License-Identifier: MIT
package analysis

// AudioProcessor consumes raw capture buffers. Implementations run on the
// audio callback and must not allocate or block.
type AudioProcessor interface {
	Process(inputBuffer []int32)
}

// FFTResultProvider exposes the latest spectrum, so band and centroid
// computations do not depend on the concrete FFT implementation.
type FFTResultProvider interface {
	GetMagnitudesInto(dst []float64) error
	GetFrequencyForBin(binIndex int) float64
	GetFFTSize() int
	GetSampleRate() float64
}

// int32 full scale, for normalizing capture samples to [-1, 1).
const fullScale = float64(1 << 31)
