package stageproc

import (
	"encoding/json"
	"strings"
)

// Result is the structured outcome of one external stage invocation. It is
// ephemeral; only the derived error detail reaches the job store.
type Result struct {
	OK         bool
	OutputPath string
	// Reason is the human-readable failure description; empty on success.
	Reason string
	// ExitCode is the process exit code when one was observed.
	ExitCode int
	// TimedOut distinguishes wall-clock expiry from a non-zero exit so a
	// future retry policy can treat the two differently.
	TimedOut bool
}

// Success builds a successful result pointing at the produced artifact.
func Success(outputPath string) Result {
	return Result{OK: true, OutputPath: outputPath}
}

// Failure builds a failed result with a human-readable reason.
func Failure(reason string) Result {
	return Result{Reason: reason}
}

// resultMarker precedes the JSON result line in stage script output.
const resultMarker = "__RESULT_JSON__:"

type markerPayload struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

// parseMarker extracts the structured result line from combined process
// output. The marker, when present, is authoritative. The second return
// reports whether a marker was found and parsed.
func parseMarker(output string) (markerPayload, bool) {
	idx := strings.LastIndex(output, resultMarker)
	if idx < 0 {
		return markerPayload{}, false
	}
	line := output[idx+len(resultMarker):]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	var payload markerPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &payload); err != nil {
		return markerPayload{}, false
	}
	return payload, true
}

// outputTail returns the last few lines of process output for error detail.
func outputTail(output []byte, maxLen int) string {
	text := strings.TrimSpace(string(output))
	if len(text) <= maxLen {
		return text
	}
	return "..." + text[len(text)-maxLen:]
}
