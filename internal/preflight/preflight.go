package preflight

import (
	"fmt"
	"strings"

	"mimic/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every environment check for the given config: directory
// access, free space, stage scripts, and required binaries.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Uploads directory", cfg.UploadsDir()))
	results = append(results, CheckDirectoryAccess("Temp directory", cfg.TempDir()))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.OutputDir()))
	results = append(results, CheckDirectoryAccess("Identities directory", cfg.Paths.IdentitiesDir))
	results = append(results, CheckFreeSpace("Data free space", cfg.Paths.DataDir))
	results = append(results, CheckStageScripts(cfg)...)
	for _, st := range CheckSystemDeps(cfg) {
		res := Result{Name: st.Name, Passed: st.Available, Detail: st.Detail}
		if st.Available {
			res.Detail = st.Command
		}
		results = append(results, res)
	}
	return results
}

// Failures filters results down to failed checks.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summarize renders failed checks as a single error suitable for fail-fast
// startup, or nil when everything passed.
func Summarize(results []Result) error {
	failed := Failures(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}
