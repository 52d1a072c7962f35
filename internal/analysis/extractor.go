// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"time"

	"audiointel/internal/predict"
)

// ExtractorConfig sizes the analysis chain.
type ExtractorConfig struct {
	SampleRate    float64
	FrameSize     int
	Window        WindowFunc
	BeatThreshold float64
	BeatRatio     float64
	BeatCooldown  time.Duration
}

// Extractor turns capture buffers into predict.FeatureFrames. It is not safe
// for concurrent use; one Extractor belongs to one capture stream.
type Extractor struct {
	fft   *FFTProcessor
	bands *BandEnergyProcessor
	beat  *BeatDetector
	freqs []float64
}

func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	fft, err := NewFFTProcessor(cfg.FrameSize, cfg.SampleRate, cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("fft: %w", err)
	}
	bands, err := NewBandEnergyProcessor(fft)
	if err != nil {
		return nil, err
	}
	freqs := make([]float64, fft.GetFFTSize()/2+1)
	for i := range freqs {
		freqs[i] = fft.GetFrequencyForBin(i)
	}
	return &Extractor{
		fft:   fft,
		bands: bands,
		beat:  NewBeatDetector(cfg.BeatThreshold, cfg.BeatRatio, cfg.BeatCooldown),
		freqs: freqs,
	}, nil
}

// Extract fills frame from one buffer captured at timestampMs.
func (e *Extractor) Extract(buf []int32, timestampMs float64, frame *predict.FeatureFrame) error {
	e.fft.Process(buf)
	if err := e.bands.Process(); err != nil {
		return err
	}

	frame.TimestampMs = timestampMs
	frame.Amplitude = min(1, calculateRMS(buf)*math.Sqrt2)
	frame.Bands = e.bands.Energies()
	frame.SpectralCentroid = e.centroid(e.bands.Magnitudes())
	frame.Beat = e.beat.Detect(frame.Bands[predict.SubBass]+frame.Bands[predict.Bass], timestampMs)
	return nil
}

// centroid is the magnitude-weighted mean frequency, 0 for silence.
func (e *Extractor) centroid(mags []float64) float64 {
	var num, den float64
	for i, m := range mags {
		num += e.freqs[i] * m
		den += m
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// FFTSize is the transform length actually used.
func (e *Extractor) FFTSize() int { return e.fft.GetFFTSize() }

// Reset clears onset state between sessions.
func (e *Extractor) Reset() { e.beat.Reset() }
