package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks enqueue-time validation failures. Surfaced
	// synchronously to the submitter; no job is created.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable marks a missing invocation target for an external
	// stage. Fatal at daemon startup, not a per-job error.
	ErrUnavailable = errors.New("adapter unavailable")
	// ErrStage marks a non-success result from an external stage.
	ErrStage = errors.New("stage failure")
	// ErrCombine marks a mux failure after both stages succeeded.
	ErrCombine = errors.New("combine failure")
	// ErrStore marks job store access failures. The dispatcher treats these
	// as transient and retries the poll instead of failing a job.
	ErrStore = errors.New("store failure")
	// ErrTimeout marks a stage invocation that exceeded its wall-clock limit.
	ErrTimeout = errors.New("timeout")
	// ErrNotFound marks a missing identity or identity asset.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrStage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether an error should be retried by the dispatcher
// poll rather than recorded as a job failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsTimeout reports whether an error chain carries the timeout marker.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Detail returns err's message with any leading sentinel marker stripped,
// suitable for embedding in a larger failure summary.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrInvalidInput, ErrUnavailable, ErrStage, ErrCombine, ErrStore, ErrTimeout, ErrNotFound} {
		if rest, ok := strings.CutPrefix(msg, marker.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
