// SPDX-License-Identifier: MIT
package predict

import (
	"fmt"
	"math"
)

// Tuning holds every empirically chosen constant of the predictor. The
// values are fixed for the lifetime of an Engine; a new session can be
// started with different values.
type Tuning struct {
	// Energy history window sizes, in frames.
	ShortWindow int `yaml:"short_window"`
	LongWindow  int `yaml:"long_window"`
	FluxWindow  int `yaml:"flux_window"`

	// Beat tracking.
	BeatDebounceMs        float64 `yaml:"beat_debounce_ms"`
	InitialBeatInterval   float64 `yaml:"initial_beat_interval_ms"`
	BeatIntervalSmoothing float64 `yaml:"beat_interval_smoothing"` // weight kept from the previous interval
	MinBeatIntervalMs     float64 `yaml:"min_beat_interval_ms"`
	MaxBeatIntervalMs     float64 `yaml:"max_beat_interval_ms"`
	MaxBeatGapMs          float64 `yaml:"max_beat_gap_ms"`
	BeatImminentMs        float64 `yaml:"beat_imminent_ms"`
	TempoHistory          int     `yaml:"tempo_history"`

	// Tempo estimation.
	MinTempoSamples int     `yaml:"min_tempo_samples"`
	MinBPM          float64 `yaml:"min_bpm"`
	MaxBPM          float64 `yaml:"max_bpm"`
	DefaultBPM      float64 `yaml:"default_bpm"`
	TempoSmoothing  float64 `yaml:"tempo_smoothing"`
	TempoFullConfAt int     `yaml:"tempo_full_confidence_at"`

	// Section classification.
	SectionDecay      float64 `yaml:"section_decay"`
	SectionHysteresis float64 `yaml:"section_hysteresis"`
	RisingWindow      int     `yaml:"rising_window"`
	RisingRatio       float64 `yaml:"rising_ratio"`

	// Drop prediction.
	BuildupMinMs        float64 `yaml:"buildup_min_ms"`
	BuildupMaxMs        float64 `yaml:"buildup_max_ms"`
	BuildupRampMs       float64 `yaml:"buildup_ramp_ms"`
	DropLeadMs          float64 `yaml:"drop_lead_ms"`
	DropSpikeRatio      float64 `yaml:"drop_spike_ratio"`
	DropFireProbability float64 `yaml:"drop_fire_probability"`
	DropDecay           float64 `yaml:"drop_decay"`
	FluxBoostThreshold  float64 `yaml:"flux_boost_threshold"`
	FluxBoost           float64 `yaml:"flux_boost"`
	DropEffectMs        float64 `yaml:"drop_effect_ms"`

	// Intensity forecast.
	LookaheadWindow  int     `yaml:"lookahead_window"`
	TrendWindow      int     `yaml:"trend_window"`
	IntensityScale   float64 `yaml:"intensity_scale"`
	AnticipationProb float64 `yaml:"anticipation_probability"`

	// Recommendations.
	MinIntensity    float64 `yaml:"min_intensity"`
	MaxIntensity    float64 `yaml:"max_intensity"`
	ExplorationRate float64 `yaml:"exploration_rate"`
	EffectTTLMs     float64 `yaml:"effect_ttl_ms"`
	MaxEffects      int     `yaml:"max_effects"`
}

// DefaultTuning returns the hand-tuned defaults for a ~60 Hz frame rate.
func DefaultTuning() Tuning {
	return Tuning{
		ShortWindow: 120,
		LongWindow:  600,
		FluxWindow:  30,

		BeatDebounceMs:        150,
		InitialBeatInterval:   500,
		BeatIntervalSmoothing: 0.7,
		MinBeatIntervalMs:     150, // the debounce floor
		MaxBeatIntervalMs:     2000,
		MaxBeatGapMs:          2000,
		BeatImminentMs:        100,
		TempoHistory:          16,

		MinTempoSamples: 4,
		MinBPM:          60,
		MaxBPM:          200,
		DefaultBPM:      120,
		TempoSmoothing:  0.9,
		TempoFullConfAt: 8,

		SectionDecay:      0.99,
		SectionHysteresis: 0.8,
		RisingWindow:      10,
		RisingRatio:       1.1,

		BuildupMinMs:        2000,
		BuildupMaxMs:        20000,
		BuildupRampMs:       6000,
		DropLeadMs:          8000,
		DropSpikeRatio:      1.5,
		DropFireProbability: 0.3,
		DropDecay:           0.95,
		FluxBoostThreshold:  0.5,
		FluxBoost:           0.3,
		DropEffectMs:        1000,

		LookaheadWindow:  30,
		TrendWindow:      10,
		IntensityScale:   10,
		AnticipationProb: 0.5,

		MinIntensity:    0.3,
		MaxIntensity:    2.0,
		ExplorationRate: 0.1,
		EffectTTLMs:     1000,
		MaxEffects:      64,
	}
}

// Validate reports the first inconsistent value.
func (t Tuning) Validate() error {
	switch {
	case t.ShortWindow < 2*t.RisingWindow:
		return fmt.Errorf("short_window (%d) must hold at least two rising windows (%d)", t.ShortWindow, 2*t.RisingWindow)
	case t.LongWindow < t.ShortWindow:
		return fmt.Errorf("long_window (%d) must not be shorter than short_window (%d)", t.LongWindow, t.ShortWindow)
	case t.FluxWindow < 1 || t.TempoHistory < 1 || t.MaxEffects < 1:
		return fmt.Errorf("flux_window, tempo_history and max_effects must be positive")
	case t.LookaheadWindow < t.TrendWindow || t.TrendWindow < 2:
		return fmt.Errorf("trend_window (%d) must be >= 2 and fit in lookahead_window (%d)", t.TrendWindow, t.LookaheadWindow)
	case t.InitialBeatInterval <= 0 || t.MinBeatIntervalMs <= 0 || t.MinBeatIntervalMs > t.MaxBeatIntervalMs:
		return fmt.Errorf("beat interval bounds are invalid (%.0f..%.0f ms)", t.MinBeatIntervalMs, t.MaxBeatIntervalMs)
	case t.MinBPM <= 0 || t.MinBPM >= t.MaxBPM:
		return fmt.Errorf("bpm range is invalid (%.0f..%.0f)", t.MinBPM, t.MaxBPM)
	case t.BuildupMinMs >= t.BuildupMaxMs || t.BuildupRampMs <= 0:
		return fmt.Errorf("buildup window is invalid (%.0f..%.0f ms)", t.BuildupMinMs, t.BuildupMaxMs)
	case t.MinIntensity > t.MaxIntensity || t.IntensityScale <= 0:
		return fmt.Errorf("intensity range is invalid (%.2f..%.2f)", t.MinIntensity, t.MaxIntensity)
	case t.ExplorationRate < 0 || t.ExplorationRate > 1:
		return fmt.Errorf("exploration_rate must be within [0,1], got %.2f", t.ExplorationRate)
	case t.RisingRatio < 1:
		return fmt.Errorf("rising_ratio must be at least 1, got %.2f", t.RisingRatio)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"beat_interval_smoothing", t.BeatIntervalSmoothing},
		{"tempo_smoothing", t.TempoSmoothing},
		{"section_decay", t.SectionDecay},
		{"section_hysteresis", t.SectionHysteresis},
		{"drop_decay", t.DropDecay},
	} {
		if f.value < 0 || f.value > 1 || math.IsNaN(f.value) {
			return fmt.Errorf("%s must be within [0,1], got %.2f", f.name, f.value)
		}
	}
	return nil
}
