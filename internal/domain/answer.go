package domain

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Turn is one line of conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Query is one user submission together with the history that preceded it.
type Query struct {
	Text    string
	History []Turn
}

// Wire values the model uses in place of a city.
const (
	LocationSentinelUnrelated   = "not_travel_related"
	LocationSentinelUnspecified = "null"
)

type LocationKind int

const (
	LocationUnspecified LocationKind = iota
	LocationKnown
	LocationUnrelated
)

// Location is the tagged form of the model's "location" field.
type Location struct {
	Kind LocationKind
	Name string // set only when Kind == LocationKnown
}

func KnownLocation(name string) Location { return Location{Kind: LocationKnown, Name: name} }

// ParseLocation maps the raw string onto its variant.
func ParseLocation(s string) Location {
	t := strings.TrimSpace(s)
	switch {
	case t == LocationSentinelUnrelated:
		return Location{Kind: LocationUnrelated}
	case t == "" || t == LocationSentinelUnspecified:
		return Location{Kind: LocationUnspecified}
	default:
		return KnownLocation(t)
	}
}

func (l Location) String() string {
	switch l.Kind {
	case LocationKnown:
		return l.Name
	case LocationUnrelated:
		return LocationSentinelUnrelated
	default:
		return LocationSentinelUnspecified
	}
}

func (l Location) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

func (l *Location) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = ParseLocation(s)
	return nil
}

type PlaceType string

const (
	PlaceAttraction    PlaceType = "attraction"
	PlaceRestaurant    PlaceType = "restaurant"
	PlaceHotel         PlaceType = "hotel"
	PlaceShopping      PlaceType = "shopping"
	PlaceEntertainment PlaceType = "entertainment"
)

type PriceRange string

const (
	PriceBudget    PriceRange = "budget"
	PriceModerate  PriceRange = "moderate"
	PriceExpensive PriceRange = "expensive"
)

type Experience string

const (
	ExperienceLocal     Experience = "local"
	ExperienceTourist   Experience = "tourist"
	ExperienceAuthentic Experience = "authentic"
	ExperienceModern    Experience = "modern"
)

func (t PlaceType) Valid() bool {
	switch t {
	case PlaceAttraction, PlaceRestaurant, PlaceHotel, PlaceShopping, PlaceEntertainment:
		return true
	}
	return false
}

func (p PriceRange) Valid() bool {
	switch p {
	case PriceBudget, PriceModerate, PriceExpensive:
		return true
	}
	return false
}

func (e Experience) Valid() bool {
	switch e {
	case ExperienceLocal, ExperienceTourist, ExperienceAuthentic, ExperienceModern:
		return true
	}
	return false
}

type PlaceOfInterest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        PlaceType  `json:"type,omitempty"`
	PriceRange  PriceRange `json:"priceRange,omitempty"`
	Experience  Experience `json:"experience,omitempty"`
}

// StructuredAnswer is the validated form of a completion.
// PlacesOfInterest is never nil and is always empty when the location is unrelated.
type StructuredAnswer struct {
	Location         Location          `json:"location"`
	PlacesOfInterest []PlaceOfInterest `json:"placesOfInterest"`
}

// Places returns the places downstream code should act on.
func (a StructuredAnswer) Places() []PlaceOfInterest {
	if a.Location.Kind == LocationUnrelated {
		return []PlaceOfInterest{}
	}
	return a.PlacesOfInterest
}
