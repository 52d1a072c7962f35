// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"fmt"
	"math"

	"audiointel/internal/predict"
)

/*
State packet (BigEndian), one per publisher tick:

	| Field              | Type    | Bytes |
	|--------------------|---------|-------|
	| Sequence number    | uint32  | 4     |
	| Sent at            | int64   | 8     | nanoseconds since epoch
	| Frame timestamp    | float64 | 8     | engine clock, ms
	| Section            | uint8   | 1     | predict.Section
	| Flags              | uint8   | 1     | bit0 beat imminent, bit1 buildup
	| Section confidence | float32 | 4     |
	| BPM                | float32 | 4     |
	| Tempo confidence   | float32 | 4     |
	| Beat confidence    | float32 | 4     |
	| Energy             | float32 | 4     |
	| Drop probability   | float32 | 4     |
	| Intensity          | float32 | 4     |
	| Predicted intensity| float32 | 4     |
*/
const PacketSize = 4 + 8 + 8 + 1 + 1 + 8*4

const (
	flagBeatImminent = 1 << iota
	flagBuildup
)

// Packet is the decoded form of a state packet.
type Packet struct {
	Sequence           uint32
	SentAtNs           int64
	TimestampMs        float64
	Section            predict.Section
	BeatImminent       bool
	Buildup            bool
	SectionConfidence  float32
	BPM                float32
	TempoConfidence    float32
	BeatConfidence     float32
	Energy             float32
	DropProbability    float32
	Intensity          float32
	PredictedIntensity float32
}

// NewPacket flattens a snapshot into a packet.
func NewPacket(seq uint32, sentAtNs int64, s *predict.Snapshot) Packet {
	return Packet{
		Sequence:           seq,
		SentAtNs:           sentAtNs,
		TimestampMs:        s.TimestampMs,
		Section:            s.Section.Current,
		BeatImminent:       s.Beat.BeatImminent,
		Buildup:            s.Buildup.IsBuildup,
		SectionConfidence:  float32(s.Section.Confidence),
		BPM:                float32(s.Tempo.BPM),
		TempoConfidence:    float32(s.Tempo.Confidence),
		BeatConfidence:     float32(s.Beat.BeatConfidence),
		Energy:             float32(s.Energy),
		DropProbability:    float32(s.Buildup.DropProbability),
		Intensity:          float32(s.Forecast.Intensity),
		PredictedIntensity: float32(s.Forecast.PredictedIntensity),
	}
}

// AppendBinary appends the wire form of p to b.
func (p *Packet) AppendBinary(b []byte) []byte {
	var flags uint8
	if p.BeatImminent {
		flags |= flagBeatImminent
	}
	if p.Buildup {
		flags |= flagBuildup
	}

	be := binary.BigEndian
	b = be.AppendUint32(b, p.Sequence)
	b = be.AppendUint64(b, uint64(p.SentAtNs))
	b = be.AppendUint64(b, math.Float64bits(p.TimestampMs))
	b = append(b, uint8(p.Section), flags)
	for _, f := range [...]float32{
		p.SectionConfidence, p.BPM, p.TempoConfidence, p.BeatConfidence,
		p.Energy, p.DropProbability, p.Intensity, p.PredictedIntensity,
	} {
		b = be.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

// DecodePacket parses one state packet.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) != PacketSize {
		return Packet{}, fmt.Errorf("state packet must be %d bytes, got %d", PacketSize, len(b))
	}
	be := binary.BigEndian
	f32 := func(off int) float32 { return math.Float32frombits(be.Uint32(b[off:])) }

	flags := b[21]
	return Packet{
		Sequence:           be.Uint32(b[0:]),
		SentAtNs:           int64(be.Uint64(b[4:])),
		TimestampMs:        math.Float64frombits(be.Uint64(b[12:])),
		Section:            predict.Section(b[20]),
		BeatImminent:       flags&flagBeatImminent != 0,
		Buildup:            flags&flagBuildup != 0,
		SectionConfidence:  f32(22),
		BPM:                f32(26),
		TempoConfidence:    f32(30),
		BeatConfidence:     f32(34),
		Energy:             f32(38),
		DropProbability:    f32(42),
		Intensity:          f32(46),
		PredictedIntensity: f32(50),
	}, nil
}
