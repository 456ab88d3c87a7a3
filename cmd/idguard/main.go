// Package main provides the entry point for the idguard CLI.
//
// idguard checks how exposed an e-mail address or username is in public
// breach, paste and leak sources, and scores a digital hygiene
// questionnaire into prioritized recommendations.
//
// Usage:
//
//	idguard check --email you@example.com --query yourname
//	idguard hygiene
//	idguard history list
//	idguard serve
//
// See --help for all available options.
package main

// main is the entry point for idguard.
func main() {
	Execute()
}
