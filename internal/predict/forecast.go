// SPDX-License-Identifier: MIT
package predict

import "gonum.org/v1/gonum/stat"

// IntensityForecaster extrapolates a composite intensity score a few frames
// ahead.
type IntensityForecaster struct {
	t       Tuning
	history *ring
	xs, ys  []float64 // regression scratch
	state   ForecastState
}

func NewIntensityForecaster(t Tuning) *IntensityForecaster {
	xs := make([]float64, t.TrendWindow)
	for i := range xs {
		xs[i] = float64(i)
	}
	return &IntensityForecaster{
		t:       t,
		history: newRing(t.LookaheadWindow),
		xs:      xs,
		ys:      make([]float64, t.TrendWindow),
	}
}

// Update scores the frame and refreshes the prediction. Inside a likely
// buildup the prediction grows with the drop probability instead of
// following the linear trend.
func (f *IntensityForecaster) Update(energy, amplitude float64, beat bool, dropProbability float64) {
	intensity := 0.4*energy + 0.4*amplitude
	if beat {
		intensity += 0.3
	}
	intensity *= 10
	f.history.Push(intensity)

	f.state.Intensity = intensity
	f.state.Trend = f.trend()
	if dropProbability > f.t.AnticipationProb {
		f.state.PredictedIntensity = intensity * (1 + dropProbability)
	} else {
		f.state.PredictedIntensity = intensity + f.state.Trend*10
	}
}

// trend is the least-squares slope of the newest TrendWindow scores, or 0
// until enough scores exist.
func (f *IntensityForecaster) trend() float64 {
	if f.history.Len() < f.t.TrendWindow {
		return 0
	}
	ys := f.history.Tail(f.ys)
	_, slope := stat.LinearRegression(f.xs, ys, nil, false)
	return slope
}

func (f *IntensityForecaster) State() ForecastState { return f.state }

// Len is the number of buffered scores.
func (f *IntensityForecaster) Len() int { return f.history.Len() }
