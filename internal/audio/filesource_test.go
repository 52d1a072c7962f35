// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes frames of a 16-bit stereo file whose left channel is
// loudBuffer repeated and right channel is silent.
func writeTestWAV(t *testing.T, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, testSampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: testSampleRate},
		Data:   make([]int, frames*2),
	}
	for i := range frames {
		buf.Data[2*i] = int(loudBuffer[i%len(loudBuffer)] >> 16)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceRun(t *testing.T) {
	path := writeTestWAV(t, testFrameSize*2+testFrameSize/2)
	src, err := OpenFileSource(path, testFrameSize)
	if err != nil {
		t.Fatalf("OpenFileSource() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != testSampleRate || src.Channels() != 2 {
		t.Fatalf("format = %.0f Hz / %d ch", src.SampleRate(), src.Channels())
	}

	var lengths []int
	var stamps []float64
	var first int32
	err = src.Run(context.Background(), func(buf []int32, ts float64) error {
		if len(lengths) == 0 {
			first = buf[10]
		}
		lengths = append(lengths, len(buf))
		stamps = append(stamps, ts)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantLengths := []int{testFrameSize, testFrameSize, testFrameSize / 2}
	if len(lengths) != len(wantLengths) {
		t.Fatalf("buffers = %v, want %v", lengths, wantLengths)
	}
	for i := range wantLengths {
		if lengths[i] != wantLengths[i] {
			t.Errorf("buffer %d length = %d, want %d", i, lengths[i], wantLengths[i])
		}
		if want := float64(i) * bufferDurationMs; absFloat(stamps[i]-want) > 1e-9 {
			t.Errorf("buffer %d timestamp = %v, want %v", i, stamps[i], want)
		}
	}
	if want := loudBuffer[10] >> 16 << 16; first != want {
		t.Errorf("left channel sample = %d, want %d", first, want)
	}
}

func TestFileSourceStops(t *testing.T) {
	path := writeTestWAV(t, testFrameSize*4)

	t.Run("Callback error", func(t *testing.T) {
		src, err := OpenFileSource(path, testFrameSize)
		if err != nil {
			t.Fatal(err)
		}
		defer src.Close()
		stop := errors.New("stop")
		calls := 0
		err = src.Run(context.Background(), func([]int32, float64) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("Run() = %v after %d calls, want stop after 1", err, calls)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		src, err := OpenFileSource(path, testFrameSize)
		if err != nil {
			t.Fatal(err)
		}
		defer src.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := src.Run(ctx, func([]int32, float64) error { return nil }); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	})
}

func TestOpenFileSourceErrors(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(garbage, []byte("definitely not RIFF data"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		frameSize int
	}{
		{"Missing file", filepath.Join(t.TempDir(), "missing.wav"), testFrameSize},
		{"Not a WAV", garbage, testFrameSize},
		{"Zero frame size", garbage, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenFileSource(tt.path, tt.frameSize); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestToFullScale(t *testing.T) {
	tests := []struct {
		depth int
		in    int
		want  int32
	}{
		{8, 128, 0},
		{8, 255, 127 << 24},
		{8, 0, -128 << 24},
		{16, -32768, -1 << 31},
		{16, 16384, 1 << 30},
		{24, 1 << 22, 1 << 30},
		{32, 12345, 12345},
	}
	for _, tt := range tests {
		s := &FileSource{bitDepth: tt.depth}
		if got := s.toFullScale(tt.in); got != tt.want {
			t.Errorf("toFullScale(%d-bit %d) = %d, want %d", tt.depth, tt.in, got, tt.want)
		}
	}
}
