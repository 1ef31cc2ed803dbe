package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/shared"
)

type HotelService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewHotelService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *HotelService {
	return &HotelService{repo: r, cache: c, cacheTTL: ttl}
}

// FindHotelsByCity returns up to domain.HotelQueryLimit hotels in the given city.
func (s *HotelService) FindHotelsByCity(ctx context.Context, city, countryCode string) ([]domain.HotelRecord, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, domain.Invalid("city is required")
	}
	cc := strings.ToUpper(strings.TrimSpace(countryCode))

	key := cityCacheKey(city, cc)
	var out []domain.HotelRecord
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	hs, err := s.repo.FindByCity(ctx, city, cc, domain.HotelQueryLimit)
	if err != nil {
		return nil, err
	}
	hs = copyHotels(hs)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, hs, s.cacheTTL)
	}
	return hs, nil
}

// FindHotelsByNameOrCity matches normalized name or city substrings. One of them is required.
func (s *HotelService) FindHotelsByNameOrCity(ctx context.Context, name, city, countryCode string) ([]domain.HotelRecord, error) {
	q := domain.HotelsQuery{
		Name:        shared.NormalizeName(name),
		City:        shared.NormalizeName(city),
		CountryCode: strings.ToUpper(strings.TrimSpace(countryCode)),
		Limit:       domain.HotelQueryLimit,
	}
	if q.Name == "" && q.City == "" {
		return nil, domain.Invalid("name or city is required")
	}

	key := fmt.Sprintf("hotels:search:%s:%s:%s", q.Name, q.City, q.CountryCode)
	var out []domain.HotelRecord
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	hs, err := s.repo.FindByNameOrCity(ctx, q)
	if err != nil {
		return nil, err
	}
	hs = copyHotels(hs)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, hs, s.cacheTTL)
	}
	return hs, nil
}

// Stats reports the number of stored hotels after checking connectivity.
func (s *HotelService) Stats(ctx context.Context) (int64, error) {
	if err := s.repo.Ping(ctx); err != nil {
		return 0, err
	}
	return s.repo.Count(ctx)
}

// cityCacheKey folds only what the store's collation folds (case and accents).
func cityCacheKey(city, countryCode string) string {
	return fmt.Sprintf("hotels:city:%s:%s", shared.FoldCase(city), countryCode)
}

// copy so the cached value never aliases the repo's backing array
func copyHotels(in []domain.HotelRecord) []domain.HotelRecord {
	out := make([]domain.HotelRecord, len(in))
	copy(out, in)
	return out
}
