package domain

import "strings"

type Region struct {
	ID          int64  `json:"id,omitempty"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
}

type AmenityGroup struct {
	GroupName string   `json:"group_name"`
	Amenities []string `json:"amenities"`
}

type DescriptionSection struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// HotelRecord mirrors one document of the hotel dump.
type HotelRecord struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Region            Region               `json:"region"`
	Address           string               `json:"address"`
	Images            []string             `json:"images"`
	AmenityGroups     []AmenityGroup       `json:"amenity_groups"`
	DescriptionStruct []DescriptionSection `json:"description_struct"`
	StarRating        *int                 `json:"star_rating,omitempty"`
	Lat               *float64             `json:"latitude,omitempty"`
	Lon               *float64             `json:"longitude,omitempty"`
	RawJSON           []byte               `json:"-"`
}

// ImageURL fills the dump's "{size}" placeholder, e.g. "800x600".
func (h HotelRecord) ImageURL(i int, size string) string {
	if i < 0 || i >= len(h.Images) {
		return ""
	}
	return strings.ReplaceAll(h.Images[i], "{size}", size)
}

// HotelsQuery drives both hotel lookups. Empty fields are ignored.
type HotelsQuery struct {
	Name        string
	City        string
	CountryCode string
	Limit       int
}

const (
	RegionTypeCity  = "City"
	HotelQueryLimit = 10
)
