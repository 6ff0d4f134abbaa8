// Package identity canonicalizes raw entity values (profile URLs, phone
// numbers, email addresses) and derives the stable deduplication key that
// correlates submissions, community reports, and media across time.
//
// Normalization never fails: garbage input degrades to a content-hash key
// rather than an error, because an assessment must always be able to run.
package identity
