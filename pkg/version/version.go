// Package version provides version information for the volatility estimator.
package version

// Version is the current version of the volatility-estimator application.
const Version = "0.3.1"

// AgentString returns the full agent string with versioning.
// Format: @halfbeep/volatility-estimator@v{version}
func AgentString() string {
	return "@halfbeep/volatility-estimator@v" + Version
}
