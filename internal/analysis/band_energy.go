// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"

	applog "audiointel/internal/log"
	"audiointel/internal/predict"
)

// FrequencyBand is the frequency range of one predict.Band. HighHz of the
// last band is replaced by the Nyquist frequency.
type FrequencyBand struct {
	Band   predict.Band
	LowHz  float64
	HighHz float64
}

// DefaultBands are the seven analysis bands in predict.Band order.
var DefaultBands = [predict.NumBands]FrequencyBand{
	{predict.SubBass, 20, 60},
	{predict.Bass, 60, 250},
	{predict.LowMid, 250, 500},
	{predict.Mid, 500, 2000},
	{predict.HighMid, 2000, 4000},
	{predict.Presence, 4000, 6000},
	{predict.Brilliance, 6000, math.Inf(1)},
}

// bandGain lifts typical program material (peaks around -20 dBFS) to the
// single-digit range the predictor is tuned for.
const bandGain = 10

// noBand marks bins outside every band.
const noBand = -1

// BandEnergyProcessor folds a magnitude spectrum into the seven bands. The
// bin-to-band map is built once, so Process is a single pass over the bins.
type BandEnergyProcessor struct {
	fftProvider FFTResultProvider
	binBand     []int8
	magnitudes  []float64
	energies    predict.BandEnergies
}

// NewBandEnergyProcessor maps each bin of the provider's spectrum to a band.
func NewBandEnergyProcessor(fftProvider FFTResultProvider) (*BandEnergyProcessor, error) {
	if fftProvider == nil {
		return nil, errors.New("band energy processor requires a non-nil FFT provider")
	}
	bins := fftProvider.GetFFTSize()/2 + 1
	nyquist := fftProvider.GetSampleRate() / 2

	p := &BandEnergyProcessor{
		fftProvider: fftProvider,
		binBand:     make([]int8, bins),
		magnitudes:  make([]float64, bins),
	}
	for i := range p.binBand {
		p.binBand[i] = int8(bandForFrequency(fftProvider.GetFrequencyForBin(i), nyquist))
	}
	applog.Debugf("Analysis: %d bins mapped onto %d bands", bins, predict.NumBands)
	return p, nil
}

func bandForFrequency(freq, nyquist float64) int {
	for _, b := range DefaultBands {
		high := min(b.HighHz, nyquist)
		if freq >= b.LowHz && (freq < high || (b.Band == predict.Brilliance && freq <= high)) {
			return int(b.Band)
		}
	}
	return noBand
}

// Process reads the latest spectrum and recomputes every band as the root of
// its summed squared bin magnitudes.
func (p *BandEnergyProcessor) Process() error {
	if err := p.fftProvider.GetMagnitudesInto(p.magnitudes); err != nil {
		return err
	}
	var sums predict.BandEnergies
	for i, m := range p.magnitudes {
		if b := p.binBand[i]; b != noBand {
			sums[b] += m * m
		}
	}
	for i, s := range sums {
		p.energies[i] = math.Sqrt(s) * bandGain
	}
	return nil
}

// Energies returns the bands computed by the last Process call.
func (p *BandEnergyProcessor) Energies() predict.BandEnergies { return p.energies }

// Magnitudes exposes the spectrum read by the last Process call. The slice is
// reused; callers must not keep it.
func (p *BandEnergyProcessor) Magnitudes() []float64 { return p.magnitudes }
