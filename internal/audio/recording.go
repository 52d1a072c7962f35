// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "audiointel/internal/log"
)

// RecordingName is the file name used when StartRecording gets no path.
func RecordingName(t time.Time) string {
	return "recording-" + t.Format("20060102-150405") + ".wav"
}

// StartRecording writes the raw input to a WAV file at the configured bit
// depth. An empty filename creates a timestamped file in the output
// directory. It returns the path being written.
func (e *Engine) StartRecording(filename string) (string, error) {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return "", errors.New("already recording")
	}

	if filename == "" {
		if err := os.MkdirAll(e.recording.OutputDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create recording directory: %w", err)
		}
		filename = filepath.Join(e.recording.OutputDir, RecordingName(time.Now()))
	}

	bitDepth := e.recording.BitDepth
	switch bitDepth {
	case 16, 24, 32:
	case 0:
		bitDepth = 16
	default:
		return "", fmt.Errorf("unsupported recording bit depth %d", bitDepth)
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	e.outputFile = file

	channels := max(e.audio.InputChannels, 1)
	e.wavEncoder = wav.NewEncoder(file, int(e.audio.SampleRate), bitDepth, channels, 1)
	e.sampleShift = 32 - bitDepth
	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  int(e.audio.SampleRate),
		},
		Data:           make([]int, e.audio.FramesPerBuffer*channels),
		SourceBitDepth: bitDepth,
	}

	atomic.StoreInt32(&e.isRecording, 1)
	applog.Infof("Audio: recording %d-bit WAV to %s", bitDepth, filename)
	return filename, nil
}

// writeRecording narrows full-scale samples to the file's bit depth and
// appends them.
func (e *Engine) writeRecording(buffer []int32) error {
	if e.wavEncoder == nil {
		return nil
	}
	n := min(len(buffer), cap(e.sampleBuf.Data))
	e.sampleBuf.Data = e.sampleBuf.Data[:n]
	for i, sample := range buffer[:n] {
		e.sampleBuf.Data[i] = int(sample >> e.sampleShift)
	}
	return e.wavEncoder.Write(e.sampleBuf)
}

func (e *Engine) StopRecording() error {
	if !atomic.CompareAndSwapInt32(&e.isRecording, 1, 0) {
		return nil
	}

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}
	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}
	applog.Infof("Audio: recording stopped")
	return nil
}

// IsRecording reports whether input is being written to disk.
func (e *Engine) IsRecording() bool {
	return atomic.LoadInt32(&e.isRecording) == 1
}
