// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	applog "audiointel/internal/log"
	"audiointel/pkg/bitint"
)

// WindowFunc selects the FFT window.
type WindowFunc int

const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

var windowNames = [...]string{"BartlettHann", "Blackman", "BlackmanNuttall", "Hann", "Hamming", "Lanczos", "Nuttall"}

func (w WindowFunc) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
	return windowNames[w]
}

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc. Unknown
// names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// FFTProcessor computes the windowed magnitude spectrum of each buffer.
//
// Magnitudes are normalized by the window's coherent gain, so a full-scale
// sine centred on a bin reads 1.0 in that bin regardless of FFT size or
// window choice.
type FFTProcessor struct {
	fft        *fourier.FFT
	fftSize    int
	sampleRate float64

	mu        sync.RWMutex
	input     []float64
	coeffs    []complex128
	magnitude []float64
	window    []float64
	norm      float64
}

var (
	_ AudioProcessor    = (*FFTProcessor)(nil)
	_ FFTResultProvider = (*FFTProcessor)(nil)
)

// NewFFTProcessor sizes the FFT to the next power of two >= frameSize;
// shorter buffers are zero padded.
func NewFFTProcessor(frameSize int, sampleRate float64, windowType WindowFunc) (*FFTProcessor, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	size := bitint.NextPowerOfTwo(frameSize)

	coeffs := make([]float64, size)
	applyWindow(coeffs, windowType)
	var sum float64
	for _, c := range coeffs {
		sum += c
	}

	applog.Debugf("Analysis: FFT size %d at %.0f Hz, %s window", size, sampleRate, windowType)

	return &FFTProcessor{
		fft:        fourier.NewFFT(size),
		fftSize:    size,
		sampleRate: sampleRate,
		input:      make([]float64, size),
		coeffs:     make([]complex128, size/2+1),
		magnitude:  make([]float64, size/2+1),
		window:     coeffs,
		norm:       2 / sum,
	}, nil
}

// Process windows the buffer, transforms it and stores the magnitudes.
func (p *FFTProcessor) Process(inputBuffer []int32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := min(len(inputBuffer), p.fftSize)
	for i := range n {
		p.input[i] = float64(inputBuffer[i]) / fullScale * p.window[i]
	}
	clear(p.input[n:])

	p.fft.Coefficients(p.coeffs, p.input)
	for i, c := range p.coeffs {
		p.magnitude[i] = cmplx.Abs(c) * p.norm
	}
}

// GetMagnitudesInto copies the latest spectrum into dst, which must hold
// exactly GetFFTSize()/2+1 values.
func (p *FFTProcessor) GetMagnitudesInto(dst []float64) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(dst) != len(p.magnitude) {
		return fmt.Errorf("destination slice length %d does not match required length %d", len(dst), len(p.magnitude))
	}
	copy(dst, p.magnitude)
	return nil
}

// GetFrequencyForBin returns the centre frequency of a bin, or 0 when the
// index is out of range.
func (p *FFTProcessor) GetFrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= len(p.magnitude) {
		return 0
	}
	return float64(binIndex) * p.sampleRate / float64(p.fftSize)
}

func (p *FFTProcessor) GetFFTSize() int        { return p.fftSize }
func (p *FFTProcessor) GetSampleRate() float64 { return p.sampleRate }

func applyWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		applog.Warnf("Analysis: unknown window function %d, using Hann", windowType)
		window.Hann(coeffs)
	}
}
