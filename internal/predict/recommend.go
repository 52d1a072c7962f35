// SPDX-License-Identifier: MIT
package predict

import "slices"

// Rand is the randomness the recommender needs. *math/rand/v2.Rand satisfies
// it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// candidates lists the visualizers that suit each section.
var candidates = map[Section][]Visualizer{
	Intro:     {VisualizerNebula, VisualizerWaveform, VisualizerParticles},
	Verse:     {VisualizerWaveform, VisualizerRings, VisualizerSpiral, VisualizerParticles},
	Chorus:    {VisualizerRings, VisualizerTornado, VisualizerFractal, VisualizerParticles},
	Buildup:   {VisualizerTunnel, VisualizerSpiral, VisualizerFractal, VisualizerParticles},
	Drop:      {VisualizerTornado, VisualizerSpiral, VisualizerParticles, VisualizerFractal},
	Breakdown: {VisualizerNebula, VisualizerWaveform, VisualizerFractal},
	Unknown:   {VisualizerWaveform},
}

var (
	bassHeavy   = []Visualizer{VisualizerSpiral, VisualizerTornado}
	trebleHeavy = []Visualizer{VisualizerParticles, VisualizerFractal}
)

// recommendInput is everything the recommender consumes for one frame.
type recommendInput struct {
	section         Section
	sectionChanged  bool
	bass, treble    float64
	predicted       float64
	dropProbability float64
	buildupStartMs  float64
	nowMs           float64
}

// Recommender maps the predictor state to rendering hints.
type Recommender struct {
	t       Tuning
	rng     Rand
	rec     Recommendation
	scratch []Visualizer
	primed  bool
}

func NewRecommender(t Tuning, rng Rand) *Recommender {
	return &Recommender{
		t:       t,
		rng:     rng,
		rec:     Recommendation{Visualizer: VisualizerWaveform, Zoom: 1, Spread: 0.5, Intensity: t.MinIntensity},
		scratch: make([]Visualizer, 0, 8),
	}
}

// Update refreshes the recommendation. The visualizer is only re-chosen when
// the section changes, so it does not flicker between frames.
func (r *Recommender) Update(in recommendInput) {
	intensity := clamp(in.predicted/r.t.IntensityScale, r.t.MinIntensity, r.t.MaxIntensity)
	r.rec.Intensity = intensity

	switch in.section {
	case Drop:
		r.rec.Zoom = 0.7 - intensity*0.1
	case Buildup:
		progress := min(1, max(0, in.nowMs-in.buildupStartMs)/r.t.DropLeadMs)
		r.rec.Zoom = 1.0 + progress*0.5
	case Breakdown, Intro:
		r.rec.Zoom = 1.2
	default:
		r.rec.Zoom = 1.0
	}

	r.rec.Spread = 0.5 + intensity*0.5
	if in.dropProbability > 0.7 {
		r.rec.Spread *= 0.7
	}

	if in.sectionChanged || !r.primed {
		r.rec.Visualizer = r.pick(in.section, in.bass, in.treble)
		r.primed = true
	}
}

// pick chooses a visualizer for section. Bass-heavy material prefers
// spiral/tornado, treble-heavy material particles/fractal; with probability
// ExplorationRate the whole list is used regardless.
func (r *Recommender) pick(section Section, bass, treble float64) Visualizer {
	list := candidates[section]
	if len(list) == 0 {
		list = candidates[Unknown]
	}

	var prefer []Visualizer
	switch {
	case bass > 1.5*treble:
		prefer = bassHeavy
	case treble > 1.2*bass:
		prefer = trebleHeavy
	}

	pool := list
	if prefer != nil && r.rng.Float64() >= r.t.ExplorationRate {
		r.scratch = r.scratch[:0]
		for _, v := range list {
			if slices.Contains(prefer, v) {
				r.scratch = append(r.scratch, v)
			}
		}
		if len(r.scratch) > 0 {
			pool = r.scratch
		}
	}
	return pool[r.rng.IntN(len(pool))]
}

func (r *Recommender) State() Recommendation { return r.rec }
