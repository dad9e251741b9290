package buildinfo

import "time"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags (RFC 3339).
var Date = "unknown"

// Short returns a compact build identifier for UI/logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// UnixDate returns the build date as unix seconds, or 0 when the build
// carries no date. A real-time clock reading earlier than the build
// date cannot be right, which makes this a handy "RTC is unset"
// threshold.
func UnixDate() int64 {
	t, err := time.Parse(time.RFC3339, Date)
	if err != nil {
		return 0
	}
	return t.Unix()
}
