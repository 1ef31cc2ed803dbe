package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xyd945/travel-ai-agent/internal/domain"
)

/********** alias registry **********/

var hotelAliases = map[string][]string{
	"id":           {"id", "hid", "hotel_id"},
	"name":         {"name", "hotel_name", "title"},
	"address":      {"address", "address_raw", "full_address", "location.address"},
	"region_type":  {"region.type", "region_type"},
	"region_name":  {"region.name", "city", "address.city"},
	"country_code": {"region.country_code", "country_code", "countryCode", "address.country_code"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string (or integral number) at path, or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

func firstAlias(m map[string]any, key string) string {
	for _, p := range hotelAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {url/src}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				if u, ok := t["url"].(string); ok && u != "" {
					out = append(out, u)
				} else if u, ok := t["src"].(string); ok && u != "" {
					out = append(out, u)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// decodeInto re-encodes a loosely typed sub-document into a typed slice.
func decodeInto[T any](m map[string]any, path string) []T {
	v := lookupAny(m, path)
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		log.Warn().Err(err).Str("field", path).Msg("skipping malformed hotel sub-document")
		return nil
	}
	return out
}

/********** hotel mapper **********/

// mapHotel turns one dump document into a HotelRecord. The region type
// defaults to City when the dump leaves it out.
func mapHotel(p map[string]any) domain.HotelRecord {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("context", "mapHotel").Msg("failed to marshal hotel to JSON")
	}

	h := domain.HotelRecord{
		ID:      firstAlias(p, "id"),
		Name:    firstAlias(p, "name"),
		Address: firstAlias(p, "address"),
		Region: domain.Region{
			Type:        firstAlias(p, "region_type"),
			Name:        firstAlias(p, "region_name"),
			CountryCode: strings.ToUpper(firstAlias(p, "country_code")),
		},
		Images:            firstSliceStrings(p, "images", "photos"),
		AmenityGroups:     decodeInto[domain.AmenityGroup](p, "amenity_groups"),
		DescriptionStruct: decodeInto[domain.DescriptionSection](p, "description_struct"),
		Lat:               getFloatFlexible(p, "latitude", "lat", "location.lat"),
		Lon:               getFloatFlexible(p, "longitude", "lon", "lng", "location.lng"),
		RawJSON:           raw,
	}
	if h.Region.Type == "" {
		h.Region.Type = domain.RegionTypeCity
	}
	if id := getFloatFlexible(p, "region.id"); id != nil {
		h.Region.ID = int64(*id)
	}
	if f := getFloatFlexible(p, "star_rating", "stars"); f != nil {
		x := int(*f)
		h.StarRating = &x
	}
	return h
}
