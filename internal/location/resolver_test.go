package location

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"postergeist/internal/geo"
	"postergeist/internal/logging"
)

type fakeGeocoder struct {
	coord  geo.Coordinate
	err    error
	called int
}

func (f *fakeGeocoder) Lookup(ctx context.Context, place string) (geo.Coordinate, error) {
	f.called++
	return f.coord, f.err
}

type fakeSource struct {
	candidates []Candidate
	err        error
	lastLat    float64
	lastLng    float64
}

func (f *fakeSource) SearchLocations(ctx context.Context, lat, lng float64) ([]Candidate, error) {
	f.lastLat = lat
	f.lastLng = lng
	return f.candidates, f.err
}

func newTestResolver(geocoder *fakeGeocoder) *Resolver {
	return NewResolver(geocoder, "Lisbon", 5, logging.NewNop(), WithRand(rand.New(rand.NewSource(1))))
}

func TestResolveUsesRealHintDirectly(t *testing.T) {
	geocoder := &fakeGeocoder{}
	source := &fakeSource{candidates: []Candidate{{Name: "A", ExternalID: "1", Lat: 40.0, Lng: -73.0}}}
	resolver := newTestResolver(geocoder)

	hint := Hint{Lat: 40.0, HasLat: true, Lng: -73.0, HasLng: true}
	resolved, err := resolver.Resolve(context.Background(), hint, source)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if geocoder.called != 0 {
		t.Fatal("geocoder must not be invoked for a real hint")
	}
	if resolved.Name != "A" {
		t.Fatalf("resolved %q, want A", resolved.Name)
	}
	if source.lastLat != 40.0 || source.lastLng != -73.0 {
		t.Fatalf("search queried (%f, %f)", source.lastLat, source.lastLng)
	}
}

func TestResolveMissingHintFallsBackToGeocoder(t *testing.T) {
	geocoder := &fakeGeocoder{coord: geo.Coordinate{Lat: 38.7223, Lng: -9.1393}}
	source := &fakeSource{candidates: []Candidate{{Name: "Baixa", ExternalID: "7", Lat: 38.71, Lng: -9.14}}}
	resolver := newTestResolver(geocoder)

	resolved, err := resolver.Resolve(context.Background(), Hint{}, source)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if geocoder.called != 1 {
		t.Fatalf("geocoder called %d times, want 1", geocoder.called)
	}
	if resolved.Name != "Baixa" {
		t.Fatalf("resolved %q", resolved.Name)
	}
	// Randomized substitute must stay within range of the geocoded center.
	center := geocoder.coord
	query := geo.Coordinate{Lat: source.lastLat, Lng: source.lastLng}
	if d := geo.Distance(center, query); d > 5.0001 {
		t.Fatalf("substitute coordinate %f km from center", d)
	}
}

func TestResolvePartialHintFallsBack(t *testing.T) {
	geocoder := &fakeGeocoder{coord: geo.Coordinate{Lat: 38.7223, Lng: -9.1393}}
	source := &fakeSource{candidates: []Candidate{{Name: "X", ExternalID: "9", Lat: 38.7, Lng: -9.1}}}
	resolver := newTestResolver(geocoder)

	_, err := resolver.Resolve(context.Background(), Hint{Lat: 41.2, HasLat: true}, source)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if geocoder.called != 1 {
		t.Fatal("missing longitude should trigger fallback")
	}
}

func TestResolveGeocoderFailurePropagates(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("no results")}
	resolver := newTestResolver(geocoder)

	_, err := resolver.Resolve(context.Background(), Hint{}, &fakeSource{})
	if err == nil {
		t.Fatal("expected geocoding failure to propagate")
	}
}

func TestResolvePicksNearestCandidate(t *testing.T) {
	source := &fakeSource{candidates: []Candidate{
		{Name: "A", ExternalID: "1", Lat: 40.0, Lng: -73.0},
		{Name: "B", ExternalID: "2", Lat: 41.0, Lng: -73.0},
	}}
	resolver := newTestResolver(&fakeGeocoder{})

	hint := Hint{Lat: 40.01, HasLat: true, Lng: -73.0, HasLng: true}
	resolved, err := resolver.Resolve(context.Background(), hint, source)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Name != "A" {
		t.Fatalf("resolved %q, want nearer candidate A", resolved.Name)
	}
}

func TestResolveEquidistantKeepsFirst(t *testing.T) {
	source := &fakeSource{candidates: []Candidate{
		{Name: "First", ExternalID: "1", Lat: 40.0, Lng: -73.1},
		{Name: "Second", ExternalID: "2", Lat: 40.0, Lng: -72.9},
	}}
	resolver := newTestResolver(&fakeGeocoder{})

	hint := Hint{Lat: 40.0, HasLat: true, Lng: -73.0, HasLng: true}
	resolved, err := resolver.Resolve(context.Background(), hint, source)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Name != "First" {
		t.Fatalf("tie-break picked %q, want First", resolved.Name)
	}
}

func TestResolveEmptyCandidatesYieldsUnknown(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	hint := Hint{Lat: 40.0, HasLat: true, Lng: -73.0, HasLng: true}
	resolved, err := resolver.Resolve(context.Background(), hint, &fakeSource{})
	if err != nil {
		t.Fatalf("empty candidate list is not an error: %v", err)
	}
	if resolved.Name != "Unknown" || resolved.ExternalID != "0" {
		t.Fatalf("sentinel mismatch: %+v", resolved)
	}
	if resolved.Lat != 40.0 || resolved.Lng != -73.0 {
		t.Fatalf("sentinel must keep the query coordinate: %+v", resolved)
	}
}

func TestResolveSearchErrorPropagates(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})
	source := &fakeSource{err: errors.New("api down")}

	hint := Hint{Lat: 40.0, HasLat: true, Lng: -73.0, HasLng: true}
	if _, err := resolver.Resolve(context.Background(), hint, source); err == nil {
		t.Fatal("expected search error to propagate")
	}
}
