// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"audiointel/internal/config"
	"audiointel/internal/transport"
)

const testSampleRate = 44100

// writeKickTrack writes a 16-bit mono WAV with a 60 Hz burst every 500ms,
// starting after 250ms of silence.
func writeKickTrack(t *testing.T, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kicks.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	n := int(seconds * testSampleRate)
	data := make([]int, n)
	for i := range data {
		tm := float64(i) / testSampleRate
		if tm < 0.25 {
			continue
		}
		if phase := math.Mod(tm-0.25, 0.5); phase < 0.1 {
			data[i] = int(math.Sin(2*math.Pi*60*tm) * 0.8 * math.MaxInt16)
		}
	}

	enc := wav.NewEncoder(f, testSampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: testSampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"analyze", "list", "devices", "--sample-rate", "--seed"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestAnalyze_Report(t *testing.T) {
	path := writeKickTrack(t, 4)

	out, err := runCLI(t, "analyze", path, "--seed", "7")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"Analyzed " + path, "at 44100 Hz", "Tempo:", "Sections:", "Drops:"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Beats: 0\n") {
		t.Errorf("expected beats on a kick track:\n%s", out)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	path := writeKickTrack(t, 2)

	first, err := runCLI(t, "analyze", path, "--seed", "3", "--json")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := runCLI(t, "analyze", path, "--seed", "3", "--json")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Error("same file and seed should produce identical output")
	}
}

func TestAnalyze_JSON(t *testing.T) {
	path := writeKickTrack(t, 2)

	out, err := runCLI(t, "analyze", path, "--json", "--frames-per-buffer", "2048")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var states, effects int
	for i, line := range lines {
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.Fatalf("line %d is not JSON: %v\n%s", i, err, line)
		}
		switch msg.Type {
		case transport.TypeState:
			states++
		case transport.TypeEffects:
			effects++
		default:
			t.Errorf("line %d has unexpected type %q", i, msg.Type)
		}
	}

	// 2s at 44100 Hz in 2048-frame buffers, the last one partial.
	if want := int(math.Ceil(2 * testSampleRate / 2048.0)); states != want {
		t.Errorf("state messages = %d, want %d", states, want)
	}
	if effects == 0 {
		t.Error("expected at least one effects message")
	}
	if !strings.HasPrefix(lines[0], `{"type":"state"`) {
		t.Errorf("first line should be a state message: %s", lines[0])
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"No file", []string{"analyze"}, "accepts 1 arg"},
		{"Missing file", []string{"analyze", filepath.Join(t.TempDir(), "none.wav")}, "none.wav"},
		{"Bad buffer size", []string{"analyze", "x.wav", "--frames-per-buffer", "1000"}, "frames_per_buffer"},
		{"Unknown config", []string{"analyze", "x.wav", "--config", "missing.yaml"}, "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	f := &flagValues{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	registerFlags(cmd, f)

	err := cmd.ParseFlags([]string{
		"-d", "3", "-s", "48000", "-b", "512", "-c", "2", "-l",
		"--no-gate", "-r", "--seed", "99",
		"--ws-address", ":9000", "--static-dir", "web",
		"--udp", "--udp-target", "10.0.0.1:7000", "--log-output", "-v",
	})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg := config.Default()
	applyFlags(cmd, f, cfg)

	a := cfg.Audio
	if a.InputDevice != 3 || a.SampleRate != 48000 || a.FramesPerBuffer != 512 ||
		a.InputChannels != 2 || !a.LowLatency || a.GateEnabled {
		t.Errorf("audio flags not applied: %+v", a)
	}
	if !cfg.Recording.Enabled || cfg.Predict.Seed != 99 {
		t.Errorf("recording=%v seed=%d", cfg.Recording.Enabled, cfg.Predict.Seed)
	}
	tr := cfg.Transport
	if tr.WebSocketAddress != ":9000" || tr.StaticDir != "web" || !tr.UDPEnabled ||
		tr.UDPTargetAddress != "10.0.0.1:7000" || !tr.LogEnabled {
		t.Errorf("transport flags not applied: %+v", tr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyFlags_UnsetKeepsConfig(t *testing.T) {
	f := &flagValues{}
	cmd := &cobra.Command{Use: "test"}
	registerFlags(cmd, f)
	if err := cmd.ParseFlags([]string{"--seed", "5"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg := config.Default()
	cfg.Audio.SampleRate = 96000
	cfg.Transport.WebSocketAddress = ":7777"
	applyFlags(cmd, f, cfg)

	if cfg.Audio.SampleRate != 96000 || cfg.Transport.WebSocketAddress != ":7777" {
		t.Errorf("unset flags overrode config: rate=%v ws=%q", cfg.Audio.SampleRate, cfg.Transport.WebSocketAddress)
	}
	if cfg.Predict.Seed != 5 {
		t.Errorf("seed = %d, want 5", cfg.Predict.Seed)
	}
}

func TestBuildTransports(t *testing.T) {
	cfg := config.Default()
	cfg.Transport.WebSocketAddress = "127.0.0.1:0"
	cfg.Transport.UDPEnabled = true
	cfg.Transport.UDPTargetAddress = "127.0.0.1:9"
	cfg.Transport.LogEnabled = true

	var out bytes.Buffer
	transports, err := buildTransports(cfg, &out)
	if err != nil {
		t.Fatalf("buildTransports: %v", err)
	}
	defer transport.Multi(transports).Close()

	if len(transports) != 3 {
		t.Errorf("got %d transports, want 3", len(transports))
	}
	if !strings.Contains(out.String(), "ws://127.0.0.1:") {
		t.Errorf("websocket address not reported: %q", out.String())
	}
}

func TestBuildTransports_Disabled(t *testing.T) {
	cfg := config.Default()
	cfg.Transport.WebSocketEnabled = false

	transports, err := buildTransports(cfg, &bytes.Buffer{})
	if err != nil || len(transports) != 0 {
		t.Errorf("buildTransports() = %d transports, %v; want none", len(transports), err)
	}
}

func TestBuildTransports_UDPFailureClosesWebSocket(t *testing.T) {
	cfg := config.Default()
	cfg.Transport.WebSocketAddress = "127.0.0.1:0"
	cfg.Transport.UDPEnabled = true
	cfg.Transport.UDPTargetAddress = "not-an-address"

	if _, err := buildTransports(cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected an error for a bad UDP target")
	}
}
