// Package main provides the entry point for the footprint CLI.
//
// footprint looks for traces of a subject (a username, a phone number,
// a domain or a web site) across a catalog of public endpoints and reports
// where it was found.
//
// Usage:
//
//	footprint search username <handle>
//	footprint search phone <number>
//	footprint search subdomain <domain>
//	footprint search dir <base-url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
