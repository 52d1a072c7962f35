// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"audiointel/internal/analysis"
	applog "audiointel/internal/log"
	"audiointel/pkg/bitint"
)

// DefaultPath is probed when LoadConfig gets an empty path.
const DefaultPath = "config.yaml"

// LoadConfig reads the YAML file at path over the defaults. An empty path
// probes DefaultPath and falls back to the defaults when it does not exist.
// Environment overrides are applied last, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every inconsistent setting, joined.
func (c *Config) Validate() error {
	var errs []error

	a := c.Audio
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if !bitint.IsPowerOfTwo(a.FramesPerBuffer) || a.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d must be a power of two <= %d", a.FramesPerBuffer, MaxBufferFrames))
	}
	if a.InputChannels < 1 {
		errs = append(errs, fmt.Errorf("audio.input_channels must be positive, got %d", a.InputChannels))
	}
	if a.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device %d is invalid", a.InputDevice))
	}
	if _, err := analysis.ParseWindowFunc(a.FFTWindow); err != nil {
		errs = append(errs, fmt.Errorf("audio.fft_window: %w", err))
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		errs = append(errs, fmt.Errorf("audio.gate_threshold must be within [0,1], got %.4f", a.GateThreshold))
	}
	if a.BeatRatio <= 1 {
		errs = append(errs, fmt.Errorf("audio.beat_ratio must exceed 1, got %.2f", a.BeatRatio))
	}

	if c.Recording.Enabled && c.Recording.BitDepth != 16 && c.Recording.BitDepth != 24 && c.Recording.BitDepth != 32 {
		errs = append(errs, fmt.Errorf("recording.bit_depth must be 16, 24 or 32, got %d", c.Recording.BitDepth))
	}

	t := c.Transport
	if t.WebSocketEnabled && t.WebSocketAddress == "" {
		errs = append(errs, errors.New("transport.ws_address must be set when the websocket is enabled"))
	}
	if t.UDPEnabled {
		if t.UDPTargetAddress == "" {
			errs = append(errs, errors.New("transport.udp_target_address must be set when UDP is enabled"))
		}
		if t.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not a known level", c.LogLevel))
	}
	if err := c.Predict.Tuning.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("predict: %w", err))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies ENV_* variables over file values. Unparseable
// values are an error rather than silently ignored.
func (c *Config) applyEnvOverrides() error {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("ENV_DEBUG: %w", err)
		}
		c.Debug = b
		applog.Infof("Config: debug=%v from env", b)
	}

	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Infof("Config: transport.ws_address=%s from env", val)
	}

	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("ENV_UDP_ENABLED: %w", err)
		}
		c.Transport.UDPEnabled = b
		applog.Infof("Config: transport.udp_enabled=%v from env", b)
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("Config: transport.udp_target_address=%s from env", val)
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("ENV_UDP_SEND_INTERVAL: %w", err)
		}
		c.Transport.UDPSendInterval = d
		applog.Infof("Config: transport.udp_send_interval=%s from env", d)
	}

	if val, ok := os.LookupEnv("ENV_PREDICT_SEED"); ok {
		seed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("ENV_PREDICT_SEED: %w", err)
		}
		c.Predict.Seed = seed
		applog.Infof("Config: predict.seed=%d from env", seed)
	}
	return nil
}
