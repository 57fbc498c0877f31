package main

// These variables are set at build time via -ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func versionString() string {
	return Version + " (commit: " + Commit + ", built: " + BuildTime + ")"
}
