// SPDX-License-Identifier: MIT
/*
Package predict implements the predictive audio-intelligence engine.

Once per rendered frame the host calls Update with the frame's features. The
engine runs its estimators in dependency order:

	EnergyHistory -> FluxTracker -> BeatTracker -> TempoEstimator ->
	SectionClassifier -> DropPredictor -> IntensityForecaster -> Recommender

and returns an immutable Snapshot. All estimators are deterministic
heuristics over bounded windows; the only randomness comes from the injected
Rand, so a fixed seed and a fixed frame stream reproduce every output.

An Engine belongs to exactly one audio session and is not safe for
concurrent use. It never reads the clock: time comes from the frames.
*/
package predict

import (
	"math/rand/v2"

	applog "audiointel/internal/log"
)

// Engine owns the complete predictor state of one audio session.
type Engine struct {
	tuning Tuning

	history  *EnergyHistory
	flux     *FluxTracker
	beat     *BeatTracker
	tempo    *TempoEstimator
	section  *SectionClassifier
	drop     *DropPredictor
	forecast *IntensityForecaster
	rec      *Recommender
	effects  *EffectQueue

	last Snapshot
}

type engineConfig struct {
	tuning Tuning
	rng    Rand
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithTuning replaces the default tuning constants.
func WithTuning(t Tuning) Option {
	return func(c *engineConfig) { c.tuning = t }
}

// WithRand injects the source used for visualizer selection.
func WithRand(r Rand) Option {
	return func(c *engineConfig) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithSeed seeds a PCG source for visualizer selection.
func WithSeed(seed uint64) Option {
	return func(c *engineConfig) { c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// New builds an Engine. Without WithRand or WithSeed it draws from the
// runtime's entropy-seeded generator. Invalid tuning falls back to the
// defaults with a warning, since the engine has no failure mode.
func New(opts ...Option) *Engine {
	cfg := engineConfig{tuning: DefaultTuning()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.tuning.Validate(); err != nil {
		applog.Warnf("Predict: invalid tuning (%v), using defaults", err)
		cfg.tuning = DefaultTuning()
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	t := cfg.tuning
	e := &Engine{
		tuning:   t,
		history:  NewEnergyHistory(t),
		flux:     NewFluxTracker(t),
		beat:     NewBeatTracker(t),
		tempo:    NewTempoEstimator(t),
		section:  NewSectionClassifier(t),
		drop:     NewDropPredictor(t),
		forecast: NewIntensityForecaster(t),
		rec:      NewRecommender(t, cfg.rng),
		effects:  NewEffectQueue(t.EffectTTLMs, t.MaxEffects),
	}
	e.last = e.snapshot(0, 0, 0)
	return e
}

// Update feeds one frame through every estimator and returns the new state.
// A nil frame is a no-op that returns the last snapshot.
func (e *Engine) Update(frame *FeatureFrame) Snapshot {
	if frame == nil {
		return e.last
	}
	f := frame.sanitized()
	now := f.TimestampMs

	energy := f.Bands.Weighted()
	e.history.Push(energy)
	flux := e.flux.Update(f.Bands)

	e.beat.Update(f.Beat, now)
	e.tempo.Update(e.beat.Intervals())

	rising := e.history.Rising()
	bass, treble := f.Bands[Bass], f.Bands[Brilliance]
	changed := e.section.Update(sectionInput{
		energy:    energy,
		longAvg:   e.history.LongAverage(),
		bass:      bass,
		treble:    treble,
		amplitude: f.Amplitude,
		rising:    rising,
	}, now)
	current := e.section.Current()
	if changed {
		applog.Debugf("Predict: section -> %s at %.0fms", current, now)
	}

	fired, intensity := e.drop.Update(dropInput{
		energy:   energy,
		shortAvg: e.history.ShortAverage(),
		rising:   rising,
		avgFlux:  e.flux.AverageFlux(),
	}, now)
	if fired {
		applog.Debugf("Predict: drop fired at %.0fms (p=%.2f)", now, intensity)
		e.effects.Push(Effect{
			Params:      DropParams{Intensity: intensity, DurationMs: e.tuning.DropEffectMs},
			TimestampMs: now,
		})
	}
	buildup := e.drop.State()

	e.forecast.Update(energy, f.Amplitude, f.Beat, buildup.DropProbability)

	e.rec.Update(recommendInput{
		section:         current,
		sectionChanged:  changed,
		bass:            bass,
		treble:          treble,
		predicted:       e.forecast.State().PredictedIntensity,
		dropProbability: buildup.DropProbability,
		buildupStartMs:  buildup.BuildupStartTimeMs,
		nowMs:           now,
	})
	if f.Beat {
		e.effects.Push(Effect{
			Params:      BeatParams{Strength: f.Amplitude, Section: current},
			TimestampMs: now,
		})
	}

	e.last = e.snapshot(e.last.Frames+1, now, energy)
	e.last.Flux = flux
	return e.last
}

func (e *Engine) snapshot(frames uint64, now, energy float64) Snapshot {
	rec := e.rec.State()
	rec.PendingEffects = e.effects.Len()
	return Snapshot{
		Frames:         frames,
		TimestampMs:    now,
		Energy:         energy,
		Beat:           e.beat.State(),
		Tempo:          e.tempo.State(),
		Section:        e.section.State(),
		Buildup:        e.drop.State(),
		Forecast:       e.forecast.State(),
		Recommendation: rec,
	}
}

// State returns the last snapshot without mutating anything.
func (e *Engine) State() Snapshot { return e.last }

// DrainPendingEffects hands every queued effect to the caller and empties the
// queue. Each effect is delivered at most once.
func (e *Engine) DrainPendingEffects() []Effect {
	out := e.effects.Drain()
	e.last.Recommendation.PendingEffects = 0
	return out
}

// Tuning returns the constants this engine runs with.
func (e *Engine) Tuning() Tuning { return e.tuning }
