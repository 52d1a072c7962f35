// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"
)

func TestGateToggle(t *testing.T) {
	engine := &Engine{gateThreshold: lowThreshold}
	steps := []struct {
		toggle func()
		want   bool
	}{
		{engine.EnableGate, true},
		{engine.EnableGate, true},
		{engine.DisableGate, false},
		{engine.DisableGate, false},
		{engine.EnableGate, true},
	}
	for i, step := range steps {
		step.toggle()
		if engine.gateEnabled != step.want {
			t.Fatalf("step %d: gateEnabled = %v, want %v", i, engine.gateEnabled, step.want)
		}
	}
	if engine.gateThreshold != lowThreshold {
		t.Error("toggling the gate must not change its threshold")
	}
}

func TestGateThreshold(t *testing.T) {
	tests := []struct {
		input, want float64
	}{
		{-0.1, 0},
		{0, 0},
		{0.001, 0.001},
		{0.25, 0.25},
		{0.5, 0.5},
		{0.999, 0.999},
		{1, 1},
		{1.5, 1},
	}

	engine := &Engine{}
	for _, tt := range tests {
		t.Run(formatFloat(tt.input), func(t *testing.T) {
			engine.SetGateThreshold(tt.input)
			if got := engine.GetGateThreshold(); absFloat(got-tt.want) > 0.0001 {
				t.Errorf("GetGateThreshold() = %.6f, want %.6f", got, tt.want)
			}
			// The hot path compares raw peaks against the int32 threshold.
			if raw := int32(tt.want * math.MaxInt32); absInt32(raw-engine.gateThreshold) > 100 {
				t.Errorf("gateThreshold = %d, want ~%d", engine.gateThreshold, raw)
			}
		})
	}
}

func TestGateDetectionHotPath(t *testing.T) {
	tests := []struct {
		desc          string
		buffer        []int32
		gateEnabled   bool
		threshold     float64
		shouldTrigger bool
	}{
		{"Gate disabled/Quiet signal", quietBuffer, false, 0.1, true},
		{"Gate disabled/Loud signal", loudBuffer, false, 0.1, true},
		{"Gate enabled/Quiet signal/Low threshold", quietBuffer, true, 0.0001, true},
		{"Gate enabled/Quiet signal/Mid threshold", quietBuffer, true, 0.1, false},
		{"Gate enabled/Loud signal/Mid threshold", loudBuffer, true, 0.1, true},
		{"Gate enabled/Loud signal/High threshold", loudBuffer, true, 0.999, false},
		{"Gate enabled/Silence/Zero threshold", make([]int32, 16), true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			engine := &Engine{gateEnabled: tt.gateEnabled}
			engine.SetGateThreshold(tt.threshold)

			if got := engine.gateOpen(tt.buffer); got != tt.shouldTrigger {
				t.Errorf("gateOpen() = %v, want %v (peak=%d, threshold=%d)",
					got, tt.shouldTrigger, peakAmplitude(tt.buffer), engine.gateThreshold)
			}
		})
	}
}

func BenchmarkGateProcessingHotPath(b *testing.B) {
	benchmarks := []struct {
		name      string
		buffer    []int32
		threshold int32
		enabled   bool
	}{
		{"Gate disabled/Normal", testBuffer, lowThreshold, false},
		{"Gate enabled/Quiet signal/Low threshold", quietBuffer, lowThreshold, true},
		{"Gate enabled/Normal signal/Low threshold", testBuffer, lowThreshold, true},
		{"Gate enabled/Loud signal/High threshold", loudBuffer, highThreshold, true},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			engine := &Engine{
				gateEnabled:   bm.enabled,
				gateThreshold: bm.threshold,
			}

			b.ReportAllocs()
			for b.Loop() {
				_ = engine.gateOpen(bm.buffer)
			}
		})
	}
}

// absInt32 returns the absolute value of x.
func absInt32(x int32) int32 {
	mask := x >> 31
	return (x ^ mask) - mask
}
