// Package stageproc invokes one external transformation stage as an isolated
// subprocess and classifies the outcome. Both heavy model stages run
// out-of-process on purpose: their Python dependency trees conflict, and the
// process boundary keeps the orchestration core independent of either.
//
// The invocation contract: the stage script runs under a bounded wall-clock
// timeout with its repository as working directory; it is expected to emit a
// `__RESULT_JSON__:` marker line describing success. When the marker is
// absent, existence of the declared output path is treated as success.
// Timeouts are classified distinctly from non-zero exits so callers can
// apply timeout-specific policy.
package stageproc
