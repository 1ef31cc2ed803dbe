package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xyd945/travel-ai-agent/internal/domain"
)

// StripFences removes markdown fence markers around a completion.
// Applying it twice yields the same result as applying it once.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := stripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripOnce(s string) string {
	for _, fence := range []string{"```", "`"} {
		if strings.HasPrefix(s, fence) {
			s = s[len(fence):]
			// optional language tag
			if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
				s = s[4:]
			}
			break
		}
	}
	for _, fence := range []string{"```", "`"} {
		if strings.HasSuffix(s, fence) {
			s = s[:len(s)-len(fence)]
			break
		}
	}
	return strings.TrimSpace(s)
}

type rawPlace struct {
	Name        *string
	Description string
	Type        string
	PriceRange  string
	Experience  string
}

// Normalize turns a raw completion into a StructuredAnswer. Anything that does
// not parse into the expected shape after fence stripping is rejected whole.
// Keys are matched exactly; encoding/json alone would accept any casing.
func Normalize(raw string) (domain.StructuredAnswer, error) {
	body := StripFences(raw)
	fail := func(err error) (domain.StructuredAnswer, error) {
		return domain.StructuredAnswer{}, &domain.MalformedResponseError{Raw: raw, Err: err}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil || obj == nil {
		if err == nil {
			err = errors.New("not an object")
		}
		return fail(fmt.Errorf("parse json: %w", err))
	}
	rawLoc, ok := obj["location"]
	if !ok {
		return fail(errors.New(`missing "location"`))
	}
	var loc string
	if err := json.Unmarshal(rawLoc, &loc); err != nil || isNull(rawLoc) {
		return fail(errors.New(`"location" is not a string`))
	}
	rawPlaces, ok := obj["placesOfInterest"]
	if !ok {
		return fail(errors.New(`missing "placesOfInterest"`))
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(rawPlaces, &items); err != nil || items == nil {
		return fail(errors.New(`"placesOfInterest" is not an array of places`))
	}

	out := domain.StructuredAnswer{
		Location:         domain.ParseLocation(loc),
		PlacesOfInterest: make([]domain.PlaceOfInterest, 0, len(items)),
	}
	if out.Location.Kind == domain.LocationUnrelated {
		return out, nil
	}
	for i, item := range items {
		rp, err := decodePlace(item)
		if err != nil {
			return fail(fmt.Errorf("placesOfInterest[%d]: %w", i, err))
		}
		out.PlacesOfInterest = append(out.PlacesOfInterest, toPlace(rp))
	}
	return out, nil
}

func decodePlace(item map[string]json.RawMessage) (rawPlace, error) {
	var rp rawPlace
	if item == nil {
		return rp, errors.New("not an object")
	}
	name, ok := item["name"]
	if !ok || isNull(name) {
		return rp, errors.New("has no name")
	}
	var n string
	if err := json.Unmarshal(name, &n); err != nil {
		return rp, errors.New(`"name" is not a string`)
	}
	rp.Name = &n
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"description", &rp.Description},
		{"type", &rp.Type},
		{"priceRange", &rp.PriceRange},
		{"experience", &rp.Experience},
	} {
		v, ok := item[f.key]
		if !ok || isNull(v) {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return rp, fmt.Errorf("%q is not a string", f.key)
		}
	}
	return rp, nil
}

func isNull(v json.RawMessage) bool { return strings.TrimSpace(string(v)) == "null" }

func toPlace(rp rawPlace) domain.PlaceOfInterest {
	p := domain.PlaceOfInterest{
		Name:        strings.TrimSpace(*rp.Name),
		Description: strings.TrimSpace(rp.Description),
	}
	if t := domain.PlaceType(strings.ToLower(rp.Type)); t.Valid() {
		p.Type = t
	}
	if pr := domain.PriceRange(strings.ToLower(rp.PriceRange)); pr.Valid() {
		p.PriceRange = pr
	}
	if e := domain.Experience(strings.ToLower(rp.Experience)); e.Valid() {
		p.Experience = e
	}
	return p
}
