// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"sync"

	applog "audiointel/internal/log"
)

// LoggingTransport writes every message to the debug log: section changes
// and effects are summarized, everything else is logged as JSON.
type LoggingTransport struct {
	mu          sync.Mutex
	lastSection string
}

func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

func (lt *LoggingTransport) Send(data any) error {
	switch msg := data.(type) {
	case StateMessage:
		lt.mu.Lock()
		defer lt.mu.Unlock()
		if s := msg.State.Section.Current.String(); s != lt.lastSection {
			lt.lastSection = s
			applog.Infof("Section: %s (confidence %.2f) at %.0fms, %.0f BPM",
				s, msg.State.Section.Confidence, msg.State.TimestampMs, msg.State.Tempo.BPM)
		}
	case EffectsMessage:
		for _, e := range msg.Effects {
			applog.Debugf("Effect: %s %+v at %.0fms", e.Kind(), e.Params, e.TimestampMs)
		}
	default:
		if applog.GetLevel() > applog.LevelDebug {
			return nil
		}
		b, err := json.Marshal(data)
		if err != nil {
			applog.Debugf("LOG_TRANSPORT: (%T) %+v", data, data)
			return nil
		}
		applog.Debugf("LOG_TRANSPORT: %s", b)
	}
	return nil
}

func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called.")
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
