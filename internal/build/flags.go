// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata injected at link time:
//
//	go build -ldflags "-X audiointel/internal/build.buildName=audiointel \
//	  -X audiointel/internal/build.buildVersion=0.3.0 ..."
//
// Development builds carry the "dev"/"unknown" placeholders.
package build

import "errors"

// Description is the one-line summary shown by the CLI.
const Description = "Real-time musical structure prediction for audio visualizers"

// Info is the link-time build metadata.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string

	info = Info{
		Name:    "audiointel",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies the ldflags values over the placeholders. Missing values
// are reported together; whatever was set is still applied.
func Initialize() error {
	var errs []error
	apply := func(dst *string, val, flag string) {
		if val == "" {
			errs = append(errs, errors.New(flag+" is required"))
			return
		}
		*dst = val
	}
	apply(&info.Name, buildName, "BuildName")
	apply(&info.Time, buildTime, "BuildTime")
	apply(&info.Commit, buildCommit, "BuildCommit")
	apply(&info.Version, buildVersion, "BuildVersion")
	return errors.Join(errs...)
}

// Get returns a copy of the current build metadata.
func Get() Info { return info }
