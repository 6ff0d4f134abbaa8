// Package engine aggregates probe results, community data, and
// user-provided evidence into a risk assessment.
//
// The engine never labels anyone a scammer. It accumulates risk points
// from independent signals, tracks how much information was actually
// available as a confidence score, and maps the totals to a risk level
// with an explanation the user can act on.
package engine
