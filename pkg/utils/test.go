// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"sync"
)

// MockTransport records every message it is sent. It satisfies the
// transport.Transport interface and is safe for concurrent use.
type MockTransport struct {
	mu       sync.Mutex
	messages []any
	closed   bool
}

func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	m.messages = append(m.messages, data)
	m.mu.Unlock()
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockTransport) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateComplexWave is a 440 Hz tone with two harmonics at 90% of full scale.
func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

// GenerateSineWave is a pure tone at 90% of full scale.
func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	return GenerateScaledSine(size, sampleRate, frequency, 0.9)
}

// GenerateScaledSine is a pure tone with peak amplitude gain (0..1).
func GenerateScaledSine(size int, sampleRate, frequency, gain float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * gain)
	}
	return buffer
}

// MixSignals sums buffers sample by sample, saturating at the int32 range.
// The result has the length of the shortest input.
func MixSignals(buffers ...[]int32) []int32 {
	if len(buffers) == 0 {
		return nil
	}
	n := len(buffers[0])
	for _, b := range buffers[1:] {
		n = min(n, len(b))
	}
	out := make([]int32, n)
	for i := range out {
		var sum int64
		for _, b := range buffers {
			sum += int64(b[i])
		}
		out[i] = int32(max(math.MinInt32, min(math.MaxInt32, sum)))
	}
	return out
}

// FindPeakBin returns the index of the largest magnitude in
// [startBin, endBin], with both bounds clamped to the slice.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	startBin = max(startBin, 0)
	endBin = min(endBin, len(magnitudes)-1)

	peakBin := startBin
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > magnitudes[peakBin] {
			peakBin = bin
		}
	}
	return peakBin
}
