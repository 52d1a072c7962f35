// SPDX-License-Identifier: MIT
package config

import (
	"testing"

	"audiointel/internal/analysis"
)

func TestExtractorConfig(t *testing.T) {
	a := Default().Audio
	a.FFTWindow = "blackman"
	got := a.ExtractorConfig()
	if got.Window != analysis.Blackman || got.FrameSize != 1024 || got.SampleRate != 44100 {
		t.Errorf("ExtractorConfig() = %+v", got)
	}
	if got.BeatCooldown != a.BeatCooldown || got.BeatRatio != a.BeatRatio {
		t.Errorf("beat settings not carried: %+v", got)
	}
}

func TestEngineOptions(t *testing.T) {
	p := Default().Predict
	if n := len(p.EngineOptions()); n != 1 {
		t.Errorf("seed 0 gave %d options, want tuning only", n)
	}
	p.Seed = 99
	if n := len(p.EngineOptions()); n != 2 {
		t.Errorf("seeded config gave %d options, want 2", n)
	}
}
