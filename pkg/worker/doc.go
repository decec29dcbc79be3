// Package worker drains queued actions one at a time.
//
// Triggers that arrive while a workflow is active are rejected by the
// executor. Callers that want them run later instead enqueue them; a Worker
// pulls each task, waits for the executor to become idle and runs the
// action through it, so queued actions never overlap each other or a
// directly triggered workflow.
package worker
