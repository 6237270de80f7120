package env

const AppName = "exhume"

// Overridden at build time via -ldflags.
var (
	Version    = "dev"
	CommitHash = "none"
	BuildTime  = "unknown"
)
