package main

import (
	"runtime"

	"audiointel/cmd"
	"audiointel/internal/build"
	applog "audiointel/internal/log"
)

// main resolves build metadata, then hands control to the CLI. Live capture
// runs its hot path on the PortAudio callback thread; everything else is
// cold path.
func main() {
	// Development builds run without ldflags and keep the placeholders.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v", err)
	}

	// One thread for the audio callback, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	if err := cmd.Execute(); err != nil {
		applog.Fatalf("%v", err)
	}
}
