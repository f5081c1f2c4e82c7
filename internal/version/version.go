// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Sidereal modes, topocentric positions, asteroid element files
// 0.2.0 - Compact binary ephemeris reader, tiered fallback, TUI dashboard
// 0.1.0 - Initial release: analytic solar system, apparent-position pipeline
