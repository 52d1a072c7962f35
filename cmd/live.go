// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"audiointel/internal/analysis"
	"audiointel/internal/audio"
	"audiointel/internal/config"
	applog "audiointel/internal/log"
	"audiointel/internal/predict"
	"audiointel/internal/transport"
	"audiointel/internal/transport/udp"
	"audiointel/internal/tui"
)

// runLive owns the PortAudio lifetime around a capture session.
func runLive(ctx context.Context, cfg *config.Config, f *flagValues, out io.Writer) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := audio.Terminate(); err != nil {
			applog.Errorf("Audio: terminate: %v", err)
		}
	}()
	return runSession(ctx, cfg, f, out)
}

// runSession captures from the configured device until ctx is cancelled or,
// with the monitor enabled, until the user quits it.
func runSession(ctx context.Context, cfg *config.Config, f *flagValues, out io.Writer) error {
	transports, err := buildTransports(cfg, out)
	if err != nil {
		return err
	}

	var feed *tui.Feed
	if f.monitor {
		feed = tui.NewFeed()
		transports = append(transports, feed)
	}

	extractor, err := analysis.NewExtractor(cfg.Audio.ExtractorConfig())
	if err != nil {
		transport.Multi(transports).Close()
		return err
	}
	pipeline, err := audio.NewPipeline(extractor, predict.New(cfg.Predict.EngineOptions()...), transports...)
	if err != nil {
		transport.Multi(transports).Close()
		return err
	}

	engine, err := audio.NewEngine(cfg, pipeline)
	if err != nil {
		pipeline.Close()
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			applog.Errorf("Engine: close: %v", err)
		}
	}()

	if err := engine.StartInputStream(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	if cfg.Recording.Enabled {
		path, err := engine.StartRecording(f.output)
		if err != nil {
			return fmt.Errorf("failed to start recording: %w", err)
		}
		fmt.Fprintf(out, "Recording to %s\n", path)
	}

	if feed != nil {
		return tui.RunMonitor(feed, "audiointel")
	}

	fmt.Fprintln(out, "Listening. Press Ctrl+C to stop.")
	<-ctx.Done()
	return nil
}

// buildTransports creates every output enabled in cfg. Transports already
// started are closed when a later one fails.
func buildTransports(cfg *config.Config, out io.Writer) ([]transport.Transport, error) {
	var transports []transport.Transport
	fail := func(err error) ([]transport.Transport, error) {
		return nil, errors.Join(err, transport.Multi(transports).Close())
	}

	t := cfg.Transport
	if t.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(t.WebSocketAddress, t.StaticDir)
		transports = append(transports, ws)
		addr, err := ws.Start()
		if err != nil {
			return fail(fmt.Errorf("failed to start websocket server: %w", err))
		}
		fmt.Fprintf(out, "WebSocket server on ws://%s/ws\n", addr)
	}

	if t.UDPEnabled {
		sender, err := udp.NewSender(t.UDPTargetAddress)
		if err != nil {
			return fail(err)
		}
		pub, err := udp.NewPublisher(t.UDPSendInterval, sender)
		if err != nil {
			return fail(errors.Join(err, sender.Close()))
		}
		transports = append(transports, pub)
		pub.Start()
		applog.Infof("UDP: publishing to %s every %s", t.UDPTargetAddress, t.UDPSendInterval)
	}

	if t.LogEnabled {
		transports = append(transports, transport.NewLoggingTransport())
	}
	return transports, nil
}
