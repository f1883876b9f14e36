// Package geocode resolves place names to coordinates through a
// Nominatim-style search endpoint.
package geocode
