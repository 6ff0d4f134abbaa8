// Package database provides SQLite-based storage for assessment
// submissions, community reports, attachment linkage, and the search
// response cache.
//
// A single database file holds all tables so that community report
// counts and attachment reuse checks can join against past submissions
// without cross-database queries.
package database
