// SPDX-License-Identifier: MIT
package predict

import "encoding/json"

// Camera holds camera hints derived from the current state.
type Camera struct {
	Zoom            float64  `json:"zoom"`
	MovementSpeed   float64  `json:"movementSpeed"`
	OrbitSpeed      float64  `json:"orbitSpeed"`
	ShakeIntensity  float64  `json:"shakeIntensity"`
	FOVMultiplier   float64  `json:"fovMultiplier"`
	DoFlyThrough    bool     `json:"doFlyThrough"`
	TimeUntilBeatMs *float64 `json:"timeUntilBeatMs"` // nil until a beat has been seen
}

// SpreadDirection tells the renderer which way to animate its spread.
type SpreadDirection int

const (
	SpreadNeutral SpreadDirection = iota
	SpreadContract
	SpreadExpand
)

func (d SpreadDirection) String() string {
	switch d {
	case SpreadContract:
		return "contract"
	case SpreadExpand:
		return "expand"
	default:
		return "neutral"
	}
}

func (d SpreadDirection) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Spread holds particle/shape spread hints.
type Spread struct {
	Spread         float64         `json:"spread"`
	Direction      SpreadDirection `json:"direction"`
	AnimationSpeed float64         `json:"animationSpeed"`
	PulseWithBeat  bool            `json:"pulseWithBeat"`
}

// CameraRecommendation derives camera hints for nowMs from the last
// snapshot. It does not mutate the engine.
func (e *Engine) CameraRecommendation(nowMs float64) Camera {
	s := e.last
	rec := s.Recommendation
	section := s.Section.Current
	p := s.Buildup.DropProbability

	c := Camera{
		Zoom:          rec.Zoom,
		MovementSpeed: 0.5 + rec.Intensity*0.5,
		OrbitSpeed:    0.5 * s.Tempo.BPM / e.tuning.DefaultBPM,
		FOVMultiplier: 1,
	}

	switch section {
	case Drop:
		c.MovementSpeed *= 1.5
		c.ShakeIntensity = rec.Intensity * 0.5
		c.FOVMultiplier = 1.15
		c.DoFlyThrough = true
	case Buildup:
		c.FOVMultiplier = 1 + p*0.2
		c.DoFlyThrough = p > 0.7
	}
	if c.ShakeIntensity == 0 && s.Beat.BeatImminent {
		c.ShakeIntensity = 0.1
	}

	if e.beat.Tracking() {
		until := max(0, s.Beat.NextBeatPredictionMs-nowMs)
		c.TimeUntilBeatMs = &until
	}
	return c
}

// SpreadRecommendation derives spread hints from the last snapshot.
func (e *Engine) SpreadRecommendation() Spread {
	s := e.last
	sp := Spread{
		Spread:         s.Recommendation.Spread,
		AnimationSpeed: s.Tempo.BPM / e.tuning.DefaultBPM,
		PulseWithBeat:  s.Tempo.Confidence >= 0.5,
	}
	switch {
	case s.Buildup.DropProbability > 0.7:
		sp.Direction = SpreadContract
	case s.Section.Current == Drop || s.Section.Current == Chorus:
		sp.Direction = SpreadExpand
	}
	return sp
}
