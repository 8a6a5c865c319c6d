package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"mimic/internal/config"
	"mimic/internal/deps"
	"mimic/internal/services/reenact"
	"mimic/internal/services/voiceconv"
)

// minFreeBytes is the least free space the data filesystem may have before
// the daemon refuses to start. Stage outputs are full video files; running
// out of space mid-job corrupts artifacts.
const minFreeBytes = 1 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable,
// writable, and traversable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has room for stage
// outputs.
func CheckFreeSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: only %d MiB free)", path, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d GiB free)", path, free>>30)}
}

// CheckStageScripts verifies both stage entry scripts resolve.
func CheckStageScripts(cfg *config.Config) []Result {
	results := make([]Result, 0, 2)
	if script, err := reenact.ResolveScript(cfg.Reenactment.RepoDir); err != nil {
		results = append(results, Result{Name: "Reenactment script", Detail: err.Error()})
	} else {
		results = append(results, Result{Name: "Reenactment script", Passed: true, Detail: script})
	}
	if script, err := voiceconv.ResolveScript(cfg.Voice.RepoDir); err != nil {
		results = append(results, Result{Name: "Voice conversion script", Detail: err.Error()})
	} else {
		results = append(results, Result{Name: "Voice conversion script", Passed: true, Detail: script})
	}
	return results
}

// CheckSystemDeps evaluates the external binaries both stages and the
// combiner shell out to. The daemon and the CLI status command share this
// list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpeg.Binary,
			Description: "Required for audio extraction and final muxing",
		},
		{
			Name:        "Reenactment Python",
			Command:     cfg.Reenactment.Python,
			Description: "Interpreter for the reenactment stage",
		},
		{
			Name:        "Voice Python",
			Command:     cfg.Voice.Python,
			Description: "Interpreter for the voice conversion stage",
		},
	}
	return deps.CheckBinaries(requirements)
}
