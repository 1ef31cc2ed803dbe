package domain

import (
	"net/url"
	"strconv"
)

// PlacePhotoURL is the Places photo endpoint. The browser appends its own key.
const PlacePhotoURL = "https://maps.googleapis.com/maps/api/place/photo"

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Height         int    `json:"height,omitempty"`
	Width          int    `json:"width,omitempty"`
}

type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// ResolvedPlace is a place record hydrated from the places API.
type ResolvedPlace struct {
	PlaceID          string        `json:"place_id,omitempty"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Geometry         Geometry      `json:"geometry"`
	Photos           []Photo       `json:"photos,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	UserRatingsTotal *int          `json:"user_ratings_total,omitempty"`
	Website          string        `json:"website,omitempty"`
	Phone            string        `json:"phone,omitempty"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
	PriceLevel       *int          `json:"price_level,omitempty"`
	Types            []string      `json:"types,omitempty"`
}

// PhotoURL builds the photo endpoint URL for the first photo, or "" if there is none.
func (p ResolvedPlace) PhotoURL(maxWidth int) string {
	if len(p.Photos) == 0 || p.Photos[0].PhotoReference == "" {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = 400
	}
	v := url.Values{}
	v.Set("maxwidth", strconv.Itoa(maxWidth))
	v.Set("photoreference", p.Photos[0].PhotoReference)
	return PlacePhotoURL + "?" + v.Encode()
}

type ResolveStrategy string

const (
	StrategyDirect ResolveStrategy = "direct"
	StrategyBiased ResolveStrategy = "biased"
)

// ParseStrategy defaults to direct for an empty value.
func ParseStrategy(s string) (ResolveStrategy, bool) {
	switch ResolveStrategy(s) {
	case "", StrategyDirect:
		return StrategyDirect, true
	case StrategyBiased:
		return StrategyBiased, true
	}
	return "", false
}

// ResolveFailure records one place that dropped out of a batch.
type ResolveFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

type ResolveBatch struct {
	Places   []ResolvedPlace  `json:"places"`
	Failures []ResolveFailure `json:"failures,omitempty"`
}

// LinkedPlace associates a model-supplied place with its resolved record, if any.
type LinkedPlace struct {
	PlaceOfInterest
	Resolved *ResolvedPlace `json:"resolved,omitempty"`
}
