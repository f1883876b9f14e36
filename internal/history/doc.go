// Package history persists the set of already-posted image names as a JSON
// array on disk, compatible with the log format older tooling wrote.
package history
