// Package scheduler runs remux jobs through a bounded worker pool. It
// owns the lifecycle of every spawned external process: preflight
// checks, progress supervision, pause/resume gating, stop kills, and
// the finalization that moves a finished output into place.
package scheduler
