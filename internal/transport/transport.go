// SPDX-License-Identifier: MIT
package transport

import "audiointel/internal/predict"

// Transport delivers pipeline messages to one consumer. Implementations must
// be safe for concurrent use and must not block the caller for long: Send is
// invoked from the audio path once per buffer.
type Transport interface {
	Send(data any) error
	Close() error
}

// Message type tags.
const (
	TypeState   = "state"
	TypeEffects = "effects"
)

// StateMessage carries the engine state after one buffer, plus the camera and
// spread hints derived from it.
type StateMessage struct {
	Type   string           `json:"type"`
	State  predict.Snapshot `json:"state"`
	Camera predict.Camera   `json:"camera"`
	Spread predict.Spread   `json:"spread"`
}

// EffectsMessage carries the effects drained after one buffer. It is only
// sent when at least one effect is pending.
type EffectsMessage struct {
	Type    string           `json:"type"`
	Effects []predict.Effect `json:"effects"`
}

func NewStateMessage(s predict.Snapshot, c predict.Camera, sp predict.Spread) StateMessage {
	return StateMessage{Type: TypeState, State: s, Camera: c, Spread: sp}
}

func NewEffectsMessage(effects []predict.Effect) EffectsMessage {
	return EffectsMessage{Type: TypeEffects, Effects: effects}
}

// Multi fans every message out to several transports. Errors are joined;
// one failing transport does not stop delivery to the rest.
type Multi []Transport
