package app

import (
	"strings"

	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/shared"
)

// MatchPlace returns the first candidate whose normalized name equals, contains,
// or is contained in the normalized query name.
func MatchPlace(name string, candidates []domain.ResolvedPlace) (domain.ResolvedPlace, bool) {
	key := shared.NormalizeName(name)
	if key == "" {
		return domain.ResolvedPlace{}, false
	}
	for _, c := range candidates {
		ck := shared.NormalizeName(c.Name)
		if ck == "" {
			continue
		}
		if ck == key || strings.Contains(ck, key) || strings.Contains(key, ck) {
			return c, true
		}
	}
	return domain.ResolvedPlace{}, false
}

// LinkPlaces pairs every place of interest with its match, keeping input order.
func LinkPlaces(pois []domain.PlaceOfInterest, places []domain.ResolvedPlace) []domain.LinkedPlace {
	out := make([]domain.LinkedPlace, 0, len(pois))
	for _, p := range pois {
		lp := domain.LinkedPlace{PlaceOfInterest: p}
		if rp, ok := MatchPlace(p.Name, places); ok {
			rp := rp
			lp.Resolved = &rp
		}
		out = append(out, lp)
	}
	return out
}
