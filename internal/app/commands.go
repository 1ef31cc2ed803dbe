package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xyd945/travel-ai-agent/internal/domain"
)

type IngestionService struct {
	repo  domain.HotelRepository
	cache domain.Cache
}

func NewIngestionService(r domain.HotelRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{repo: r, cache: cache}
}

// IngestHotel decodes one dump document and upserts it. A document without
// an id or a name is rejected with domain.ErrInvalidInput.
func (s *IngestionService) IngestHotel(ctx context.Context, doc []byte) error {
	var p map[string]any
	if err := json.Unmarshal(doc, &p); err != nil {
		return domain.Invalid("hotel document: %v", err)
	}
	h := mapHotel(p)
	if h.ID == "" || h.Name == "" {
		return domain.Invalid("hotel document without id or name")
	}
	if err := s.repo.UpsertHotel(ctx, h); err != nil {
		return fmt.Errorf("upsert hotel %s: %w", h.ID, err)
	}
	if s.cache != nil {
		s.invalidateCity(ctx, h.Region)
	}
	return nil
}

// evict both city lookup variants; name searches expire on their TTL
func (s *IngestionService) invalidateCity(ctx context.Context, r domain.Region) {
	_ = s.cache.Del(ctx, cityCacheKey(r.Name, r.CountryCode))
	_ = s.cache.Del(ctx, cityCacheKey(r.Name, ""))
}
