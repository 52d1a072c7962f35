// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"audiointel/internal/predict"
)

// Limits shared by config validation and the audio layer.
const (
	MinDeviceID     = -1 // system default input
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxBufferFrames = 8192
)

// Config is the application configuration, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Audio     AudioConfig     `yaml:"audio"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
	Predict   PredictConfig   `yaml:"predict"`
}

// AudioConfig covers capture and feature extraction.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"` // -1 for the default device
	SampleRate      float64 `yaml:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // also the FFT size, power of two
	LowLatency      bool    `yaml:"low_latency"`
	InputChannels   int     `yaml:"input_channels"` // the first channel is analysed
	FFTWindow       string  `yaml:"fft_window"`

	GateEnabled   bool    `yaml:"gate_enabled"`
	GateThreshold float64 `yaml:"gate_threshold"` // 0..1 of full scale

	BeatThreshold float64       `yaml:"beat_threshold"` // minimum low-band energy for an onset
	BeatRatio     float64       `yaml:"beat_ratio"`     // energy rise over the running baseline
	BeatCooldown  time.Duration `yaml:"beat_cooldown"`
}

// RecordingConfig controls WAV capture of the input stream.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
	BitDepth  int    `yaml:"bit_depth"`
}

// TransportConfig selects where engine output is published.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"ws_enabled"`
	WebSocketAddress string `yaml:"ws_address"`
	StaticDir        string `yaml:"static_dir"` // served at / next to /ws when set

	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`

	LogEnabled bool `yaml:"log_enabled"` // log every published message at debug level
}

// PredictConfig tunes the prediction engine. Seed 0 draws a random seed.
type PredictConfig struct {
	Seed           uint64 `yaml:"seed"`
	predict.Tuning `yaml:",inline"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     MinDeviceID,
			SampleRate:      44100,
			FramesPerBuffer: 1024,
			InputChannels:   1,
			FFTWindow:       "Hann",
			GateEnabled:     true,
			GateThreshold:   0.001,
			BeatThreshold:   0.02,
			BeatRatio:       1.4,
			BeatCooldown:    150 * time.Millisecond,
		},
		Recording: RecordingConfig{
			OutputDir: "./recordings",
			BitDepth:  16,
		},
		Transport: TransportConfig{
			WebSocketEnabled: true,
			WebSocketAddress: ":8080",
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  33 * time.Millisecond,
		},
		Predict: PredictConfig{Tuning: predict.DefaultTuning()},
	}
}
