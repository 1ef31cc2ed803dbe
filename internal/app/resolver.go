package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xyd945/travel-ai-agent/internal/adapters/observability"
	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/shared"
)

const tracerName = "github.com/xyd945/travel-ai-agent/internal/app"

type PlaceResolver struct {
	places   domain.PlacesClient
	cache    domain.Cache
	cacheTTL time.Duration
	limit    int
}

// NewPlaceResolver caps every batch at limit concurrent lookups. cache may be nil.
func NewPlaceResolver(p domain.PlacesClient, c domain.Cache, ttl time.Duration, limit int) *PlaceResolver {
	if limit <= 0 {
		limit = 4
	}
	return &PlaceResolver{places: p, cache: c, cacheTTL: ttl, limit: limit}
}

// Resolve looks up a single place. A lookup without candidates returns domain.ErrNotFound.
func (r *PlaceResolver) Resolve(ctx context.Context, name, location string, strategy domain.ResolveStrategy) (domain.ResolvedPlace, error) {
	name, location = strings.TrimSpace(name), strings.TrimSpace(location)
	if name == "" {
		return domain.ResolvedPlace{}, domain.Invalid("place name is required")
	}
	strategy = effectiveStrategy(strategy, location)
	return r.resolveOne(ctx, name, location, strategy, r.bias(ctx, location, strategy))
}

// ResolveAll resolves every place independently. Failures are collected in
// the batch and never abort it. Places keep input order, minus the failures.
func (r *PlaceResolver) ResolveAll(ctx context.Context, pois []domain.PlaceOfInterest, location string, strategy domain.ResolveStrategy) domain.ResolveBatch {
	location = strings.TrimSpace(location)
	strategy = effectiveStrategy(strategy, location)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "PlaceResolver.ResolveAll", trace.WithAttributes(
		attribute.Int("places.count", len(pois)),
		attribute.String("places.strategy", string(strategy)),
	))
	defer span.End()

	bias := r.bias(ctx, location, strategy)

	resolved := make([]*domain.ResolvedPlace, len(pois))
	failed := make([]*domain.ResolveFailure, len(pois))

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i, p := range pois {
		g.Go(func() error {
			name := strings.TrimSpace(p.Name)
			var (
				rp  domain.ResolvedPlace
				err error
			)
			switch {
			case name == "":
				err = domain.Invalid("place name is required")
			case ctx.Err() != nil:
				err = ctx.Err()
			default:
				rp, err = r.resolveOne(ctx, name, location, strategy, bias)
			}
			if err != nil {
				reason := failureReason(err)
				failed[i] = &domain.ResolveFailure{Name: p.Name, Reason: reason, Err: err}
				observability.ObserveResolveFailure(reason)
				log.Warn().Err(err).Str("place", p.Name).Str("reason", reason).Msg("place resolve failed")
				return nil
			}
			resolved[i] = &rp
			return nil
		})
	}
	_ = g.Wait()

	batch := domain.ResolveBatch{Places: make([]domain.ResolvedPlace, 0, len(pois))}
	for i := range pois {
		if resolved[i] != nil {
			batch.Places = append(batch.Places, *resolved[i])
		}
		if failed[i] != nil {
			batch.Failures = append(batch.Failures, *failed[i])
		}
	}
	span.SetAttributes(
		attribute.Int("places.resolved", len(batch.Places)),
		attribute.Int("places.failed", len(batch.Failures)),
	)
	return batch
}

func (r *PlaceResolver) resolveOne(ctx context.Context, name, location string, strategy domain.ResolveStrategy, bias *domain.LatLng) (domain.ResolvedPlace, error) {
	key := placeCacheKey(name, location, strategy)
	var cached domain.ResolvedPlace
	if r.cache != nil {
		if ok, _ := r.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	var (
		id  string
		err error
	)
	switch {
	case strategy == domain.StrategyBiased && bias != nil:
		id, err = r.places.FindPlace(ctx, name, bias)
	case strategy == domain.StrategyBiased:
		id, err = r.places.FindPlace(ctx, searchText(name, location), nil)
	default:
		id, err = r.places.TextSearch(ctx, searchText(name, location))
	}
	if err != nil {
		return domain.ResolvedPlace{}, fmt.Errorf("search %q: %w", name, err)
	}

	place, err := r.places.Details(ctx, id)
	if err != nil {
		return domain.ResolvedPlace{}, fmt.Errorf("details %q: %w", name, err)
	}
	// an unbiased fallback must not stand in for a biased result
	if r.cache != nil && !(strategy == domain.StrategyBiased && bias == nil) {
		_ = r.cache.Set(ctx, key, place, r.cacheTTL)
	}
	return place, nil
}

// bias geocodes the reference location for biased lookups; nil means unbiased.
func (r *PlaceResolver) bias(ctx context.Context, location string, strategy domain.ResolveStrategy) *domain.LatLng {
	if strategy != domain.StrategyBiased || location == "" {
		return nil
	}
	key := "geo:v1:" + hashKey(shared.FoldName(location))
	var ll domain.LatLng
	if r.cache != nil {
		if ok, _ := r.cache.Get(ctx, key, &ll); ok {
			return &ll
		}
	}
	ll, err := r.places.Geocode(ctx, location)
	if err != nil {
		log.Warn().Err(err).Str("location", location).Msg("geocode failed; falling back to unbiased lookup")
		return nil
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, key, ll, r.cacheTTL)
	}
	return &ll
}

func effectiveStrategy(s domain.ResolveStrategy, location string) domain.ResolveStrategy {
	if s == domain.StrategyBiased && location != "" {
		return domain.StrategyBiased
	}
	return domain.StrategyDirect
}

func searchText(name, location string) string {
	if location == "" {
		return name
	}
	return name + " " + location
}

func placeCacheKey(name, location string, s domain.ResolveStrategy) string {
	return "place:v1:" + hashKey(shared.NormalizeName(name)+"|"+shared.FoldName(location)+"|"+string(s))
}

func hashKey(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

func failureReason(err error) string {
	var (
		up  *domain.UpstreamError
		net *domain.NetworkError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &up):
		return "upstream"
	case errors.As(err, &net):
		return "network"
	}
	return "error"
}
