// Package orchestrator wires the preview pipeline: a stored document passes
// through an optional transformer and the configured decorators before a
// renderer from the registry draws it.
package orchestrator
