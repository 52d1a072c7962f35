// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"

	"audiointel/internal/analysis"
	"audiointel/internal/config"
	"audiointel/internal/predict"
	"audiointel/internal/transport"
	"audiointel/pkg/utils"
)

const (
	testSampleRate = 44100
	testFrameSize  = 1024
)

var (
	quietBuffer = utils.GenerateScaledSine(testFrameSize, testSampleRate, 440, 0.01)
	testBuffer  = utils.GenerateScaledSine(testFrameSize, testSampleRate, 440, 0.3)
	loudBuffer  = utils.GenerateScaledSine(testFrameSize, testSampleRate, 440, 0.9)

	lowThreshold  = int32(0.001 * math.MaxInt32)
	highThreshold = int32(0.95 * math.MaxInt32)
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func absFloat(x float64) float64 {
	return math.Abs(x)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Audio.SampleRate = testSampleRate
	cfg.Audio.FramesPerBuffer = testFrameSize
	cfg.Predict.Seed = 1
	return cfg
}

func newTestPipeline(t interface{ Fatalf(string, ...any) }, transports ...transport.Transport) *Pipeline {
	cfg := testConfig()
	ex, err := analysis.NewExtractor(cfg.Audio.ExtractorConfig())
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	p, err := NewPipeline(ex, predict.New(cfg.Predict.EngineOptions()...), transports...)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

// bufferDurationMs is the length of one test buffer.
var bufferDurationMs = float64(testFrameSize) * 1000 / testSampleRate

