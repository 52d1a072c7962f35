// SPDX-License-Identifier: MIT
package predict

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Band identifies one of the seven analysis bands of a FeatureFrame.
type Band int

const (
	SubBass Band = iota
	Bass
	LowMid
	Mid
	HighMid
	Presence
	Brilliance

	NumBands = 7
)

var bandNames = [NumBands]string{"subBass", "bass", "lowMid", "mid", "highMid", "presence", "brilliance"}

// String returns the camelCase band name used on the wire.
func (b Band) String() string {
	if b < 0 || int(b) >= NumBands {
		return "unknown"
	}
	return bandNames[b]
}

// ParseBand converts a band name (case-insensitive) to a Band.
func ParseBand(name string) (Band, bool) {
	for i, n := range bandNames {
		if strings.EqualFold(n, name) {
			return Band(i), true
		}
	}
	return 0, false
}

// BandEnergies holds one non-negative magnitude per Band.
type BandEnergies [NumBands]float64

// bandWeights bias the total energy towards the low end.
var bandWeights = BandEnergies{1.5, 1.3, 1.0, 1.0, 0.8, 0.6, 0.4}

// Weighted returns the weighted sum of all bands.
func (e BandEnergies) Weighted() float64 {
	var sum float64
	for i, v := range e {
		sum += v * bandWeights[i]
	}
	return sum
}

// MarshalJSON encodes the bands as an object keyed by band name.
func (e BandEnergies) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumBands)
	for i, v := range e {
		m[bandNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts an object keyed by band name. Missing bands stay zero
// and unknown keys are ignored.
func (e *BandEnergies) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*e = BandEnergies{}
	for k, v := range m {
		if b, ok := ParseBand(k); ok {
			e[b] = v
		}
	}
	return nil
}

// FeatureFrame is one frame of measurements produced by the feature extractor.
// Any field left at its zero value is treated as absent.
type FeatureFrame struct {
	TimestampMs      float64      `json:"timestampMs"`
	Amplitude        float64      `json:"amplitude"`
	Bands            BandEnergies `json:"energyBands"`
	Beat             bool         `json:"beat"`
	SpectralCentroid float64      `json:"spectralCentroid"`
}

// maxMagnitude bounds band energies and the centroid so sums over a full
// history window stay finite.
const maxMagnitude = 1e9

// sanitized returns a copy with NaN, Inf and negative values replaced by 0
// and magnitudes clamped to their valid range.
func (f FeatureFrame) sanitized() FeatureFrame {
	out := f
	out.TimestampMs = finite(f.TimestampMs)
	out.Amplitude = clamp(finite(f.Amplitude), 0, 1)
	out.SpectralCentroid = clamp(finite(f.SpectralCentroid), 0, maxMagnitude)
	for i, v := range f.Bands {
		out.Bands[i] = clamp(finite(v), 0, maxMagnitude)
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Section is the musical section label produced by the classifier.
type Section int

const (
	Unknown Section = iota
	Intro
	Verse
	Chorus
	Buildup
	Drop
	Breakdown
)

// String returns the lower-case section name.
func (s Section) String() string {
	switch s {
	case Intro:
		return "intro"
	case Verse:
		return "verse"
	case Chorus:
		return "chorus"
	case Buildup:
		return "buildup"
	case Drop:
		return "drop"
	case Breakdown:
		return "breakdown"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Section) UnmarshalText(text []byte) error {
	v, err := ParseSection(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSection converts a section name (case-insensitive) to a Section.
func ParseSection(name string) (Section, error) {
	switch strings.ToLower(name) {
	case "intro":
		return Intro, nil
	case "verse":
		return Verse, nil
	case "chorus":
		return Chorus, nil
	case "buildup":
		return Buildup, nil
	case "drop":
		return Drop, nil
	case "breakdown":
		return Breakdown, nil
	case "unknown":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown section name: '%s'", name)
	}
}

// Visualizer is a visual style tag recommended to the rendering layer.
type Visualizer string

const (
	VisualizerWaveform  Visualizer = "waveform"
	VisualizerNebula    Visualizer = "nebula"
	VisualizerRings     Visualizer = "rings"
	VisualizerTunnel    Visualizer = "tunnel"
	VisualizerSpiral    Visualizer = "spiral"
	VisualizerTornado   Visualizer = "tornado"
	VisualizerParticles Visualizer = "particles"
	VisualizerFractal   Visualizer = "fractal"
)

// BeatState is the BeatTracker's observable state.
type BeatState struct {
	LastBeatTimeMs       float64 `json:"lastBeatTimeMs"`
	BeatIntervalMs       float64 `json:"beatIntervalMs"`
	BeatConfidence       float64 `json:"beatConfidence"`
	NextBeatPredictionMs float64 `json:"nextBeatPredictionMs"`
	BeatImminent         bool    `json:"beatImminent"`
}

// TempoState is the TempoEstimator's observable state.
type TempoState struct {
	BPM        float64 `json:"bpm"`
	Confidence float64 `json:"confidence"`
}

// SectionChange is one entry of the section history log.
type SectionChange struct {
	Section     Section `json:"section"`
	TimestampMs float64 `json:"timestampMs"`
	Confidence  float64 `json:"confidence"`
}

// SectionState is the SectionClassifier's observable state.
type SectionState struct {
	Current    Section         `json:"currentSection"`
	Confidence float64         `json:"confidence"`
	History    []SectionChange `json:"history"`
}

// BuildupState is the DropPredictor's observable state.
type BuildupState struct {
	IsBuildup            bool    `json:"isBuildup"`
	BuildupStartTimeMs   float64 `json:"buildupStartTimeMs"`
	BuildupEnergyAtStart float64 `json:"buildupEnergyAtStart"`
	DropProbability      float64 `json:"dropProbability"`
	PredictedDropTimeMs  float64 `json:"predictedDropTimeMs"`
}

// ForecastState is the IntensityForecaster's observable state.
type ForecastState struct {
	Intensity          float64 `json:"intensity"`
	Trend              float64 `json:"trend"`
	PredictedIntensity float64 `json:"predictedIntensity"`
}

// Recommendation is the RecommendationEngine's output for the current frame.
type Recommendation struct {
	Visualizer     Visualizer `json:"recommendedVisualizer"`
	Zoom           float64    `json:"recommendedZoom"`
	Spread         float64    `json:"recommendedSpread"`
	Intensity      float64    `json:"recommendedIntensity"`
	PendingEffects int        `json:"pendingEffects"`
}

// Snapshot is an immutable copy of the engine state after a frame.
type Snapshot struct {
	Frames         uint64         `json:"frames"`
	TimestampMs    float64        `json:"timestampMs"`
	Energy         float64        `json:"energy"`
	Flux           float64        `json:"flux"`
	Beat           BeatState      `json:"beat"`
	Tempo          TempoState     `json:"tempo"`
	Section        SectionState   `json:"section"`
	Buildup        BuildupState   `json:"buildup"`
	Forecast       ForecastState  `json:"forecast"`
	Recommendation Recommendation `json:"recommendation"`
}
