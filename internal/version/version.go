// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Location presets, phase window table, event log, JSON snapshots
// 0.2.0 - Star field with staggered reveal, twinkle and shooting stars
// 0.1.0 - Initial release: solar phase windows, sky gradient, sun and moon placement
