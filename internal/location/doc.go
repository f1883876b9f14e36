// Package location resolves a raw image geo-hint into a concrete named
// location by querying a candidate source and picking the nearest match,
// with a randomized fallback near a configured city when the hint carries
// no real GPS data.
package location
