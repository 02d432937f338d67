// Package common holds shared constants for the fact-check scoring node.
package common

// PackageName is used as the metrics namespace and in diagnostics.
const PackageName = "factcheck"

// Version is the node version, overridden at build time via ldflags.
var Version = "dev"
