// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "audiointel/internal/log"
)

// FileSource replays a WAV file as fixed-size mono buffers. Timestamps come
// from the sample position, so a run over the same file is deterministic.
type FileSource struct {
	file      *os.File
	decoder   *wav.Decoder
	frameSize int

	sampleRate float64
	channels   int
	bitDepth   int
}

// OpenFileSource opens path and reads its header. frameSize is the number of
// sample frames per buffer handed to the callback.
func OpenFileSource(path string, frameSize int) (*FileSource, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}
	d.ReadInfo()
	if err := d.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	s := &FileSource{
		file:       f,
		decoder:    d,
		frameSize:  frameSize,
		sampleRate: float64(d.SampleRate),
		channels:   int(d.NumChans),
		bitDepth:   int(d.BitDepth),
	}
	if s.channels < 1 || s.sampleRate <= 0 {
		f.Close()
		return nil, fmt.Errorf("%s has an unusable format (%d channels at %.0f Hz)", path, s.channels, s.sampleRate)
	}
	switch s.bitDepth {
	case 8, 16, 24, 32:
	default:
		f.Close()
		return nil, fmt.Errorf("%s has unsupported bit depth %d", path, s.bitDepth)
	}
	applog.Infof("FileSource: %s, %d channels, %.0f Hz, %d-bit", path, s.channels, s.sampleRate, s.bitDepth)
	return s, nil
}

func (s *FileSource) SampleRate() float64 { return s.sampleRate }
func (s *FileSource) Channels() int       { return s.channels }

// Run decodes the file and calls fn for every buffer with its start time in
// milliseconds. The buffer is reused between calls; the final one may be
// shorter than frameSize. Run stops at the end of the file, when ctx is done,
// or on the first error returned by fn.
func (s *FileSource) Run(ctx context.Context, fn func(buf []int32, timestampMs float64) error) error {
	pcm := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: s.channels, SampleRate: int(s.sampleRate)},
		Data:   make([]int, s.frameSize*s.channels),
	}
	mono := make([]int32, s.frameSize)
	var position uint64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.decoder.PCMBuffer(pcm)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode PCM: %w", err)
		}
		frames := n / s.channels
		if frames == 0 {
			return nil
		}

		for i := range frames {
			mono[i] = s.toFullScale(pcm.Data[i*s.channels])
		}
		if err := fn(mono[:frames], float64(position)*1000/s.sampleRate); err != nil {
			return err
		}
		position += uint64(frames)
	}
}

// toFullScale widens a decoded sample to the int32 range used by capture.
func (s *FileSource) toFullScale(v int) int32 {
	if s.bitDepth == 8 {
		v -= 128
	}
	return int32(v << (32 - s.bitDepth))
}

func (s *FileSource) Close() error { return s.file.Close() }
