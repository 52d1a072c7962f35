// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(LevelWarn)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level were written: %q", out)
	}
	if !strings.Contains(out, "[WARN]  shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("missing expected messages: %q", out)
	}
}

func TestConfigure(t *testing.T) {
	captureOutput(t)

	if err := Configure("error", false); err != nil || GetLevel() != LevelError {
		t.Errorf("Configure(error) = %v, level %s", err, GetLevel())
	}
	if err := Configure("error", true); err != nil || GetLevel() != LevelDebug {
		t.Errorf("debug flag should force DEBUG, got %s (%v)", GetLevel(), err)
	}
	if err := Configure("loud", false); err == nil || GetLevel() != LevelInfo {
		t.Errorf("Configure(loud) = %v, level %s; want error and INFO", err, GetLevel())
	}
}

func BenchmarkDebugfDisabled(b *testing.B) {
	SetLevel(LevelInfo)
	b.ReportAllocs()
	for iter := 0; iter < b.N; iter++ {
		Debugf("frame %d", 1)
	}
}
