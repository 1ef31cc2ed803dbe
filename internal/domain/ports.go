package domain

import (
	"context"
	"time"
)

type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PlacesClient is the narrow slice of the places/geocoding API this app uses.
// Lookups with no candidate return ErrNotFound.
type PlacesClient interface {
	TextSearch(ctx context.Context, query string) (placeID string, err error)
	FindPlace(ctx context.Context, input string, bias *LatLng) (placeID string, err error)
	Details(ctx context.Context, placeID string) (ResolvedPlace, error)
	Geocode(ctx context.Context, address string) (LatLng, error)
}

type HotelRepository interface {
	// Write paths
	UpsertHotel(ctx context.Context, h HotelRecord) error

	// Read paths
	FindByCity(ctx context.Context, city, countryCode string, limit int) ([]HotelRecord, error)
	FindByNameOrCity(ctx context.Context, q HotelsQuery) ([]HotelRecord, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
