// Package cli assembles the lighthouse-report command hierarchy, wiring
// configuration loading, structured logging, and the report subcommand.
package cli
