// Package model defines the core data structures shared across RiskCheck:
// risk statuses, signals, footprint summaries, evidence answers, and the
// final assessment produced by the decision engine.
//
// The package has no dependencies on other internal packages so that it can
// be imported from anywhere without creating cycles.
package model
