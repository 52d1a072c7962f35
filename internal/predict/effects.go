// SPDX-License-Identifier: MIT
package predict

import (
	"encoding/json"
	"fmt"
)

// EffectKind identifies a one-shot effect for the rendering layer.
type EffectKind int

const (
	EffectBeat EffectKind = iota
	EffectDrop
)

func (k EffectKind) String() string {
	switch k {
	case EffectBeat:
		return "beat"
	case EffectDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// EffectParams is the payload of an Effect. The concrete type is determined
// by the effect kind: BeatParams for EffectBeat, DropParams for EffectDrop.
type EffectParams interface {
	Kind() EffectKind
}

// BeatParams accompanies a beat effect.
type BeatParams struct {
	Strength float64 `json:"strength"` // frame amplitude
	Section  Section `json:"section"`
}

func (BeatParams) Kind() EffectKind { return EffectBeat }

// DropParams accompanies a drop effect.
type DropParams struct {
	Intensity  float64 `json:"intensity"`
	DurationMs float64 `json:"durationMs"`
}

func (DropParams) Kind() EffectKind { return EffectDrop }

// Effect is a discrete event queued for the effects consumer.
type Effect struct {
	Params      EffectParams
	TimestampMs float64
}

// Kind is shorthand for e.Params.Kind().
func (e Effect) Kind() EffectKind { return e.Params.Kind() }

// MarshalJSON encodes the effect as {"type", "params", "timestampMs"}.
func (e Effect) MarshalJSON() ([]byte, error) {
	if e.Params == nil {
		return nil, fmt.Errorf("effect at %.0fms has no params", e.TimestampMs)
	}
	return json.Marshal(struct {
		Type        string       `json:"type"`
		Params      EffectParams `json:"params"`
		TimestampMs float64      `json:"timestampMs"`
	}{e.Kind().String(), e.Params, e.TimestampMs})
}

// EffectQueue is a bounded FIFO of pending effects. Entries older than the
// TTL are pruned whenever a new effect is pushed.
type EffectQueue struct {
	ttlMs   float64
	limit   int
	pending []Effect
}

func NewEffectQueue(ttlMs float64, limit int) *EffectQueue {
	return &EffectQueue{
		ttlMs:   ttlMs,
		limit:   limit,
		pending: make([]Effect, 0, limit),
	}
}

// Push prunes expired entries relative to the new effect and appends it.
// When the queue is full the oldest entry is dropped.
func (q *EffectQueue) Push(e Effect) {
	keep := q.pending[:0]
	for _, p := range q.pending {
		if e.TimestampMs-p.TimestampMs <= q.ttlMs {
			keep = append(keep, p)
		}
	}
	q.pending = keep
	if len(q.pending) >= q.limit {
		q.pending = append(q.pending[:0], q.pending[1:]...)
	}
	q.pending = append(q.pending, e)
}

// Drain returns every pending effect and empties the queue. A second call
// without an intervening Push returns an empty slice.
func (q *EffectQueue) Drain() []Effect {
	out := make([]Effect, len(q.pending))
	copy(out, q.pending)
	q.pending = q.pending[:0]
	return out
}

func (q *EffectQueue) Len() int { return len(q.pending) }
