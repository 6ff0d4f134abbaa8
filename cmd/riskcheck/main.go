// Package main provides the entry point for the RiskCheck CLI.
//
// RiskCheck assesses the fraud risk of online sellers and marketplace
// listings from public signals (reachability, domain age, search
// footprint) and user-supplied evidence. It never labels anyone a
// scammer; it reports risk and uncertainty.
//
// Usage:
//
//	riskcheck check <platform> <identifier>
//	riskcheck check --file <submissions.json>
//
// See --help for all available options.
package main

// main is the entry point for RiskCheck.
func main() {
	Execute()
}
