// Package main provides the entry point for the termscan CLI.
//
// Termscan finds the Terms & Conditions and Privacy Policy links on a web
// page, sends the documents to a remote analysis service, and reports the
// legal risk it finds.
//
// Usage:
//
//	termscan scan <page-url>
//	termscan watch <page-url>
//	termscan history
//
// See --help for all available options.
package main

// main is the entry point for termscan.
func main() {
	Execute()
}
