// SPDX-License-Identifier: MIT
/*
Package audio hosts the prediction pipeline on an input source:

- Live capture through PortAudio with a branchless noise gate
- WAV replay through FileSource for deterministic offline runs
- Optional WAV recording of the raw input

Thread Safety:
- The capture callback runs on a locked OS thread and owns the pipeline
- Recording state is switched atomically
- Buffers are allocated up front; the callback never grows them
*/
package audio

import (
	"errors"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"audiointel/internal/config"
	applog "audiointel/internal/log"
)

type Engine struct {
	audio     config.AudioConfig
	recording config.RecordingConfig
	pipeline  *Pipeline

	// Audio input handling.
	inputBuffer  []int32
	monoBuffer   []int32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream
	framesRead   uint64

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold int32 // absolute amplitude, 0..MaxInt32

	// Recording state and buffers.
	isRecording int32
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer
	sampleShift int
}

// NewEngine resolves the configured input device and prepares the capture
// buffers. PortAudio must be initialized.
func NewEngine(cfg *config.Config, pipeline *Pipeline) (*Engine, error) {
	if pipeline == nil {
		return nil, errors.New("audio engine requires a pipeline")
	}
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	e := newEngine(cfg, pipeline)
	e.inputDevice = inputDevice
	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}
	applog.Infof("Audio: input %q, %d ch at %.0f Hz, %d frames, latency %s",
		inputDevice.Name, cfg.Audio.InputChannels, cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer, e.inputLatency)
	return e, nil
}

func newEngine(cfg *config.Config, pipeline *Pipeline) *Engine {
	e := &Engine{
		audio:       cfg.Audio,
		recording:   cfg.Recording,
		pipeline:    pipeline,
		inputBuffer: make([]int32, cfg.Audio.FramesPerBuffer*cfg.Audio.InputChannels),
		monoBuffer:  make([]int32, cfg.Audio.FramesPerBuffer),
		gateEnabled: cfg.Audio.GateEnabled,
	}
	e.SetGateThreshold(cfg.Audio.GateThreshold)
	return e
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.audio.InputChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: e.audio.FramesPerBuffer,
		SampleRate:      e.audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return err
	}
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream == nil {
		return nil
	}
	if err := e.inputStream.Stop(); err != nil {
		return err
	}
	if err := e.inputStream.Close(); err != nil {
		return err
	}
	e.inputStream = nil
	return nil
}

// processInputStream is the capture callback. It runs on a locked OS thread
// and only touches pre-allocated buffers.
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer)

	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.writeRecording(e.inputBuffer); err != nil {
			applog.Errorf("Audio: error writing to WAV file: %v", err)
		}
	}
}

// processBuffer extracts the first channel, applies the gate and feeds the
// pipeline. A closed gate feeds silence so the engine clock keeps moving.
func (e *Engine) processBuffer(buffer []int32) {
	channels := max(e.audio.InputChannels, 1)
	frames := min(len(buffer)/channels, len(e.monoBuffer))
	mono := e.monoBuffer[:frames]
	for i := range mono {
		mono[i] = buffer[i*channels]
	}

	if !e.gateOpen(mono) {
		clear(mono)
	}

	timestampMs := float64(e.framesRead) * 1000 / e.audio.SampleRate
	e.framesRead += uint64(frames)

	if _, _, err := e.pipeline.Process(mono, timestampMs); err != nil {
		applog.Debugf("Audio: pipeline error at %.0fms: %v", timestampMs, err)
	}
}

// Close stops recording and the input stream, then closes the pipeline's
// transports.
func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}
	if err := e.StopInputStream(); err != nil {
		return err
	}
	if e.pipeline != nil {
		return e.pipeline.Close()
	}
	return nil
}
