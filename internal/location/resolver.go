package location

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"postergeist/internal/geo"
	"postergeist/internal/logging"
	"postergeist/internal/services"
)

// Hint carries optional latitude/longitude extracted from image metadata.
// Either field may be absent; the zero Hint means "no metadata at all".
type Hint struct {
	Lat    float64
	Lng    float64
	HasLat bool
	HasLng bool
}

// Candidate is a named location returned by the search collaborator. The
// resolver's output has the same shape, so a resolved location is the
// chosen candidate (or the Unknown sentinel).
type Candidate struct {
	Name       string
	ExternalID string
	Lat        float64
	Lng        float64
}

// Coordinate returns the candidate's position as a geo.Coordinate.
func (c Candidate) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: c.Lat, Lng: c.Lng}
}

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, place string) (geo.Coordinate, error)
}

// CandidateSource returns named locations near a coordinate. The result
// ordering is meaningful: ties in distance go to the earlier entry.
type CandidateSource interface {
	SearchLocations(ctx context.Context, lat, lng float64) ([]Candidate, error)
}

// Resolver turns a raw metadata hint into a concrete named location.
type Resolver struct {
	geocoder     Geocoder
	fallbackCity string
	rangeKm      float64
	rng          *rand.Rand
	logger       *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithRand overrides the random source used for fallback coordinates.
func WithRand(rng *rand.Rand) Option {
	return func(r *Resolver) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// NewResolver constructs a Resolver that substitutes a randomized point
// within rangeKm of fallbackCity when a hint carries no real GPS data.
func NewResolver(geocoder Geocoder, fallbackCity string, rangeKm float64, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		geocoder:     geocoder,
		fallbackCity: fallbackCity,
		rangeKm:      rangeKm,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:       logging.NewComponentLogger(logger, "location"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks the nearest named location to the hinted coordinate. Missing
// or unset hint fields fall back to a randomized point near the configured
// city. An empty candidate list yields the Unknown sentinel, not an error;
// a geocoding failure on the fallback path is an error the caller decides
// how to handle.
func (r *Resolver) Resolve(ctx context.Context, hint Hint, source CandidateSource) (Candidate, error) {
	coord := geo.Coordinate{Lat: geo.UnsetDegrees(), Lng: geo.UnsetDegrees()}
	if hint.HasLat {
		coord.Lat = hint.Lat
	}
	if hint.HasLng {
		coord.Lng = hint.Lng
	}

	if geo.IsUnset(coord) {
		center, err := r.geocoder.Lookup(ctx, r.fallbackCity)
		if err != nil {
			return Candidate{}, fmt.Errorf("geocode fallback city %q: %w", r.fallbackCity, err)
		}
		coord = geo.RandomPointWithin(r.rng, center, r.rangeKm)
		r.logger.Debug("substituted fallback coordinate",
			logging.String("city", r.fallbackCity),
			logging.Float64("lat", coord.Lat),
			logging.Float64("lng", coord.Lng))
	}

	candidates, err := source.SearchLocations(ctx, geo.Round8(coord.Lat), geo.Round8(coord.Lng))
	if err != nil {
		return Candidate{}, services.Wrap(services.ErrExternalService, "location", "search", "", err)
	}
	if len(candidates) == 0 {
		r.logger.Info("no locations found, using Unknown",
			logging.Float64("lat", coord.Lat),
			logging.Float64("lng", coord.Lng))
		return Candidate{Name: "Unknown", ExternalID: "0", Lat: coord.Lat, Lng: coord.Lng}, nil
	}

	// Stable first-minimum scan: equidistant candidates keep source order.
	closest := candidates[0]
	best := geo.Distance(coord, closest.Coordinate())
	for _, candidate := range candidates[1:] {
		if d := geo.Distance(coord, candidate.Coordinate()); d < best {
			closest = candidate
			best = d
		}
	}

	r.logger.Info("resolved location",
		logging.String(logging.FieldLocation, closest.Name),
		logging.String("external_id", closest.ExternalID),
		logging.Float64("distance_km", best))
	return closest, nil
}
