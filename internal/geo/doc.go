// Package geo provides the spherical-earth math used by location
// resolution: great-circle distances, randomized points within a radius,
// and the sentinel coordinate that marks images without GPS metadata.
package geo
