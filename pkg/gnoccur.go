// Package gnoccur holds shared application metadata for the gnoccur tool.
// gnoccur converts eDNA metabarcoding ASV tables into biodiversity occurrence
// records resolved against an authoritative taxonomic backbone.
package gnoccur

var (
	// Version is set by build flags.
	Version = "v0.1.0+dev"
	// Build is the build timestamp, set by build flags.
	Build = "n/a"
)
