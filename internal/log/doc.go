// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler automatically masks sensitive values before they reach
// the underlying handler: the search provider API key, authorization
// material, and reporter/user contact details submitted with community
// reports. Even in verbose mode these values never appear in log output,
// because probe debugging logs request parameters and community-report
// handling logs submission fields.
package log
