// Package diagnostic provides structured errors, warnings and infos produced
// while validating a pipeline configuration.
//
// Key capabilities:
//   - Unknown plugin reports with close-name suggestions
//   - Duplicate plugin warnings
//   - A combined error for callers that only need pass/fail
package diagnostic
