// Package navigation implements the preview state machine: Idle on a step,
// a short Waiting period after a successful Next, and Submitted once the last
// step validates. Timers run on a clockwork.Clock so tests drive them with a
// fake clock.
package navigation
