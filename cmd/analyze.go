// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"audiointel/internal/analysis"
	"audiointel/internal/audio"
	"audiointel/internal/config"
	"audiointel/internal/predict"
	"audiointel/internal/transport"
)

func newAnalyzeCommand(f *flagValues) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Run the prediction engine over a WAV file and print the timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, args[0], jsonOut, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the state and effects messages as NDJSON")
	return cmd
}

// analysisReport collects what a file run produced beyond the final state.
type analysisReport struct {
	buffers int
	beats   int
	drops   []predict.Effect
	last    predict.Snapshot
}

// runAnalyze feeds the file through the same pipeline live capture uses.
// The file's sample rate replaces the configured one.
func runAnalyze(ctx context.Context, cfg *config.Config, path string, jsonOut bool, out io.Writer) error {
	src, err := audio.OpenFileSource(path, cfg.Audio.FramesPerBuffer)
	if err != nil {
		return err
	}
	defer src.Close()

	cfg.Audio.SampleRate = src.SampleRate()
	extractor, err := analysis.NewExtractor(cfg.Audio.ExtractorConfig())
	if err != nil {
		return err
	}

	var transports []transport.Transport
	if jsonOut {
		transports = append(transports, transport.NewJSONTransport(out))
	}
	pipeline, err := audio.NewPipeline(extractor, predict.New(cfg.Predict.EngineOptions()...), transports...)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	var report analysisReport
	err = src.Run(ctx, func(buf []int32, timestampMs float64) error {
		snap, effects, err := pipeline.Process(buf, timestampMs)
		if err != nil {
			return err
		}
		report.buffers++
		report.last = snap
		for _, e := range effects {
			switch e.Kind() {
			case predict.EffectBeat:
				report.beats++
			case predict.EffectDrop:
				report.drops = append(report.drops, e)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", path, err)
	}

	if !jsonOut {
		writeReport(out, path, src.SampleRate(), &report)
	}
	return nil
}

func writeReport(w io.Writer, path string, sampleRate float64, r *analysisReport) {
	s := r.last
	fmt.Fprintf(w, "Analyzed %s: %d buffers, %.2fs at %.0f Hz\n", path, r.buffers, s.TimestampMs/1000, sampleRate)
	fmt.Fprintf(w, "Tempo: %.1f BPM (confidence %.2f)\n", s.Tempo.BPM, s.Tempo.Confidence)
	fmt.Fprintf(w, "Beats: %d\n", r.beats)

	fmt.Fprintln(w, "Sections:")
	if len(s.Section.History) == 0 {
		fmt.Fprintf(w, "  %8.2fs  %s\n", 0.0, s.Section.Current)
	}
	for _, c := range s.Section.History {
		fmt.Fprintf(w, "  %8.2fs  %-9s confidence %.2f\n", c.TimestampMs/1000, c.Section, c.Confidence)
	}

	fmt.Fprintf(w, "Drops: %d\n", len(r.drops))
	for _, d := range r.drops {
		if p, ok := d.Params.(predict.DropParams); ok {
			fmt.Fprintf(w, "  %8.2fs  intensity %.2f\n", d.TimestampMs/1000, p.Intensity)
		}
	}
}
