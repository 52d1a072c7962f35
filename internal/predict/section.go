// SPDX-License-Identifier: MIT
package predict

// sectionInput is what the classifier looks at for one frame.
type sectionInput struct {
	energy    float64 // weighted band sum
	longAvg   float64
	bass      float64
	treble    float64
	amplitude float64
	rising    bool
}

// classify walks the decision list; the first matching rule wins. A zero
// confidence means no rule matched and the previous section is kept.
func classify(in sectionInput, previous Section) (Section, float64) {
	e, avg := in.energy, in.longAvg
	switch {
	case e > 1.5*avg && in.bass > 0.3 && in.amplitude > 0.5:
		return Drop, 0.8
	case in.rising && in.treble > 1.2*in.bass && in.amplitude > 0.2:
		return Buildup, 0.7
	case e > 1.2*avg && in.amplitude > 0.35:
		return Chorus, 0.6
	case e < 0.5*avg && in.amplitude < 0.2:
		return Breakdown, 0.5
	case e > 0.7*avg && e < 1.2*avg:
		return Verse, 0.4
	case e < 0.3*avg:
		return Intro, 0.3
	default:
		return previous, 0
	}
}

const maxSectionHistory = 256

// SectionClassifier labels the current musical section. Confidence decays
// every frame and a new label is only adopted when its confidence clearly
// exceeds the decayed current one, which keeps single frames from flipping
// the label.
type SectionClassifier struct {
	decay      float64
	hysteresis float64
	state      SectionState
}

func NewSectionClassifier(t Tuning) *SectionClassifier {
	return &SectionClassifier{
		decay:      t.SectionDecay,
		hysteresis: t.SectionHysteresis,
		state:      SectionState{Current: Intro},
	}
}

// Update classifies one frame and reports whether the label changed.
func (c *SectionClassifier) Update(in sectionInput, nowMs float64) bool {
	s := &c.state
	s.Confidence = clamp(s.Confidence*c.decay, 0, 1)

	section, confidence := classify(in, s.Current)
	if confidence <= c.hysteresis*s.Confidence {
		return false
	}

	changed := section != s.Current
	s.Current = section
	s.Confidence = confidence
	if changed {
		if len(s.History) >= maxSectionHistory {
			s.History = s.History[1:]
		}
		s.History = append(s.History, SectionChange{
			Section:     section,
			TimestampMs: nowMs,
			Confidence:  confidence,
		})
	}
	return changed
}

// State returns a copy of the classifier state. History entries are never
// written in place once appended, so the returned slice is capped at its
// length and safe to share.
func (c *SectionClassifier) State() SectionState {
	s := c.state
	n := len(s.History)
	s.History = s.History[:n:n]
	return s
}

func (c *SectionClassifier) Current() Section { return c.state.Current }
