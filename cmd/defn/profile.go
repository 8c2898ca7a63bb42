package main

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	"github.com/toyz/defn/internal/utils"
)

var profileMode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// profileModes returns the accepted --profile values, sorted
func profileModes() []string {
	return slices.Sorted(maps.Keys(profileMode))
}

// startProfile starts the profiler selected by mode and returns its stop function
func startProfile(mode, dir string, diagnostics *utils.DiagnosticSystem) (stop func()) {
	fn, ok := profileMode[mode]
	if !ok {
		return func() {}
	}

	diagnostics.Debug("Profiling %s into %s", mode, dir)
	p := profile.Start(fn, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
	return func() {
		p.Stop()
		diagnostics.Verbose("Wrote %s profile to %s", mode, dir)
	}
}
