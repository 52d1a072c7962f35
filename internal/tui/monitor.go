// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"audiointel/internal/predict"
	"audiointel/internal/transport"
)

// maxRecentEffects is how many effects the monitor keeps on screen.
const maxRecentEffects = 8

// Feed is a transport that buffers pipeline output for the monitor. The
// pipeline pushes at the audio rate; the monitor pulls at its own refresh
// rate, so the audio path never waits on the terminal.
type Feed struct {
	mu       sync.Mutex
	state    transport.StateMessage
	hasState bool
	effects  []predict.Effect
	closed   bool
}

func NewFeed() *Feed { return &Feed{} }

func (f *Feed) Send(data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch msg := data.(type) {
	case transport.StateMessage:
		f.state, f.hasState = msg, true
	case transport.EffectsMessage:
		f.effects = append(f.effects, msg.Effects...)
		if over := len(f.effects) - maxRecentEffects; over > 0 {
			f.effects = append(f.effects[:0], f.effects[over:]...)
		}
	}
	return nil
}

// Close marks the feed finished; the monitor exits on its next refresh.
func (f *Feed) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

type feedMsg struct {
	state    transport.StateMessage
	hasState bool
	effects  []predict.Effect
	closed   bool
}

func (f *Feed) read() feedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return feedMsg{
		state:    f.state,
		hasState: f.hasState,
		effects:  append([]predict.Effect(nil), f.effects...),
		closed:   f.closed,
	}
}

var _ transport.Transport = (*Feed)(nil)

// MonitorModel renders the live engine state.
type MonitorModel struct {
	feed     *Feed
	title    string
	interval time.Duration
	last     feedMsg
}

func NewMonitorModel(feed *Feed, title string, interval time.Duration) MonitorModel {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return MonitorModel{feed: feed, title: title, interval: interval}
}

func (m MonitorModel) poll() tea.Cmd {
	feed := m.feed
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return feed.read() })
}

func (m MonitorModel) Init() tea.Cmd { return m.poll() }

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case feedMsg:
		m.last = msg
		if msg.closed {
			return m, tea.Quit
		}
		return m, m.poll()
	case tea.KeyMsg:
		if key.Matches(msg, keyQuit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MonitorModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	if !m.last.hasState {
		sb.WriteString("Waiting for audio...\n")
	} else {
		writeState(&sb, m.last.state)
	}

	sb.WriteString("\nRecent effects:\n")
	if len(m.last.effects) == 0 {
		sb.WriteString("  none\n")
	}
	for i := len(m.last.effects) - 1; i >= 0; i-- {
		sb.WriteString("  " + describeEffect(m.last.effects[i]) + "\n")
	}

	sb.WriteString("\n" + infoStyle.Render("q: Quit"))
	return sb.String()
}

func writeState(sb *strings.Builder, msg transport.StateMessage) {
	s := msg.State
	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label) + value + "\n")
	}

	section := fmt.Sprintf("%-9s %s %.2f", s.Section.Current, bar(s.Section.Confidence, 10), s.Section.Confidence)
	if s.Section.Current == predict.Drop {
		section = dropStyle.Render(section)
	}
	row("Section", section)
	row("Tempo", fmt.Sprintf("%.1f BPM (confidence %.2f)", s.Tempo.BPM, s.Tempo.Confidence))

	beat := fmt.Sprintf("every %.0fms, confidence %.2f", s.Beat.BeatIntervalMs, s.Beat.BeatConfidence)
	if s.Beat.BeatImminent {
		beat = highlightStyle.Render("● ") + beat
	}
	row("Beat", beat)

	drop := fmt.Sprintf("%s %.2f", bar(s.Buildup.DropProbability, 10), s.Buildup.DropProbability)
	if s.Buildup.IsBuildup {
		drop += highlightStyle.Render("  BUILDUP")
	}
	row("Drop", drop)
	row("Intensity", fmt.Sprintf("%.2f now, %.2f predicted (trend %+.2f)",
		s.Forecast.Intensity, s.Forecast.PredictedIntensity, s.Forecast.Trend))

	r := s.Recommendation
	row("Visualizer", fmt.Sprintf("%s  zoom %.2f  spread %.2f  intensity %.2f", r.Visualizer, r.Zoom, r.Spread, r.Intensity))
	row("Camera", fmt.Sprintf("speed %.2f  shake %.2f  fov %.2f", msg.Camera.MovementSpeed, msg.Camera.ShakeIntensity, msg.Camera.FOVMultiplier))
	row("Time", fmt.Sprintf("%.1fs, %d frames", s.TimestampMs/1000, s.Frames))
}

func describeEffect(e predict.Effect) string {
	switch p := e.Params.(type) {
	case predict.DropParams:
		return dropStyle.Render(fmt.Sprintf("%8.0fms drop  intensity %.2f for %.0fms", e.TimestampMs, p.Intensity, p.DurationMs))
	case predict.BeatParams:
		return fmt.Sprintf("%8.0fms beat  strength %.2f in %s", e.TimestampMs, p.Strength, p.Section)
	default:
		return fmt.Sprintf("%8.0fms %s", e.TimestampMs, e.Kind())
	}
}

// bar renders v in [0,1] as a fixed-width gauge.
func bar(v float64, width int) string {
	filled := int(max(0, min(1, v))*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RunMonitor shows the monitor until the user quits or the feed closes.
func RunMonitor(feed *Feed, title string) error {
	_, err := tea.NewProgram(NewMonitorModel(feed, title, 0), tea.WithAltScreen()).Run()
	return err
}
