// Package probe implements the external signal probes used during a risk
// assessment: phone number validation, email MX lookups, safe URL
// reachability checks, RDAP domain age queries, and internet footprint
// searches through a programmable search engine.
//
// Probes are intentionally conservative. They only touch public hosts,
// cap response sizes, and cache search responses to limit API usage.
// A probe failure is signal data, not a fatal condition: callers map
// failed probes to an Unknown verification status rather than aborting
// the assessment.
package probe
