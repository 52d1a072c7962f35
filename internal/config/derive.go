// SPDX-License-Identifier: MIT
package config

import (
	"audiointel/internal/analysis"
	"audiointel/internal/predict"
)

// ExtractorConfig translates the audio section for the feature extractor.
// An unknown window name falls back to Hann; Validate reports it.
func (a AudioConfig) ExtractorConfig() analysis.ExtractorConfig {
	w, _ := analysis.ParseWindowFunc(a.FFTWindow)
	return analysis.ExtractorConfig{
		SampleRate:    a.SampleRate,
		FrameSize:     a.FramesPerBuffer,
		Window:        w,
		BeatThreshold: a.BeatThreshold,
		BeatRatio:     a.BeatRatio,
		BeatCooldown:  a.BeatCooldown,
	}
}

// EngineOptions returns the predict.Engine options for this section. Seed 0
// leaves the engine on an entropy-seeded source.
func (p PredictConfig) EngineOptions() []predict.Option {
	opts := []predict.Option{predict.WithTuning(p.Tuning)}
	if p.Seed != 0 {
		opts = append(opts, predict.WithSeed(p.Seed))
	}
	return opts
}
