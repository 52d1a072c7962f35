// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"audiointel/internal/audio"
	applog "audiointel/internal/log"
	"audiointel/internal/tui"
)

func newListCommand(f *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()
			return audio.ListDevices(cmd.OutOrStdout())
		},
	}
}

func newDevicesCommand(f *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Pick an input device interactively, then start capture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			if err := audio.Initialize(); err != nil {
				return err
			}
			defer func() {
				if err := audio.Terminate(); err != nil {
					applog.Errorf("Audio: terminate: %v", err)
				}
			}()

			sel, ok, err := tui.RunDevicePicker(audio.HostDevices)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			cfg.Audio.InputDevice = sel.DeviceID
			cfg.Audio.SampleRate = sel.SampleRate
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid selection: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using %s at %.0f Hz\n", sel.DeviceName, sel.SampleRate)
			return runSession(cmd.Context(), cfg, f, cmd.OutOrStdout())
		},
	}
}
