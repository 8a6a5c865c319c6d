package queue

import "errors"

// ErrNotProcessing is returned when a finalize transition targets a job that
// is not in the processing state. Calling finalize twice, or on a pending or
// terminal job, is a programming error surfaced to the caller rather than
// silently overwriting terminal state.
var ErrNotProcessing = errors.New("job is not in processing state")
