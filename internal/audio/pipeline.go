// SPDX-License-Identifier: MIT
package audio

import (
	"errors"

	"audiointel/internal/analysis"
	applog "audiointel/internal/log"
	"audiointel/internal/predict"
	"audiointel/internal/transport"
)

// Pipeline turns mono buffers into published engine state. It owns the
// prediction engine of one session and is driven from a single goroutine:
// the capture callback or a file source.
type Pipeline struct {
	extractor *analysis.Extractor
	engine    *predict.Engine
	out       transport.Multi
	frame     predict.FeatureFrame
}

func NewPipeline(extractor *analysis.Extractor, engine *predict.Engine, transports ...transport.Transport) (*Pipeline, error) {
	if extractor == nil || engine == nil {
		return nil, errors.New("pipeline requires an extractor and an engine")
	}
	return &Pipeline{
		extractor: extractor,
		engine:    engine,
		out:       transport.Multi(transports),
	}, nil
}

// Process analyses one buffer captured at timestampMs, advances the engine
// and publishes one state message, plus an effects message when any effect
// is pending. Transport failures are logged, not returned.
func (p *Pipeline) Process(buf []int32, timestampMs float64) (predict.Snapshot, []predict.Effect, error) {
	if err := p.extractor.Extract(buf, timestampMs, &p.frame); err != nil {
		return p.engine.State(), nil, err
	}

	snap := p.engine.Update(&p.frame)
	effects := p.engine.DrainPendingEffects()

	state := transport.NewStateMessage(snap, p.engine.CameraRecommendation(timestampMs), p.engine.SpreadRecommendation())
	if err := p.out.Send(state); err != nil {
		applog.Debugf("Pipeline: state publish failed: %v", err)
	}
	if len(effects) > 0 {
		if err := p.out.Send(transport.NewEffectsMessage(effects)); err != nil {
			applog.Debugf("Pipeline: effects publish failed: %v", err)
		}
	}
	return snap, effects, nil
}

// Frame returns the features extracted from the last buffer.
func (p *Pipeline) Frame() predict.FeatureFrame { return p.frame }

// Engine exposes the session's prediction engine.
func (p *Pipeline) Engine() *predict.Engine { return p.engine }

// Close closes every transport.
func (p *Pipeline) Close() error { return p.out.Close() }
