// Package gplaces talks to the Google Places and Geocoding web services.
package gplaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/xyd945/travel-ai-agent/internal/adapters/observability"
	"github.com/xyd945/travel-ai-agent/internal/domain"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	service        = "places"

	// DetailsFields is the fixed field mask for place details.
	DetailsFields = "place_id,name,formatted_address,geometry,photos,rating,website,formatted_phone_number,opening_hours,types,price_level,user_ratings_total"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) *Client {
	return NewWithHTTPClient(base, key, rps, &http.Client{Timeout: 10 * time.Second})
}

// NewWithHTTPClient allows overriding the HTTP client (used for tests).
func NewWithHTTPClient(base, key string, rps int, hc *http.Client) *Client {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   hc,
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- wire types ----

type envelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type placeResult struct {
	PlaceID              string               `json:"place_id"`
	Name                 string               `json:"name"`
	FormattedAddress     string               `json:"formatted_address"`
	Geometry             *domain.Geometry     `json:"geometry"`
	Photos               []domain.Photo       `json:"photos"`
	Rating               *float64             `json:"rating"`
	UserRatingsTotal     *int                 `json:"user_ratings_total"`
	Website              string               `json:"website"`
	FormattedPhoneNumber string               `json:"formatted_phone_number"`
	OpeningHours         *domain.OpeningHours `json:"opening_hours"`
	PriceLevel           *int                 `json:"price_level"`
	Types                []string             `json:"types"`
}

type textSearchResponse struct {
	envelope
	Results []placeResult `json:"results"`
}

type findPlaceResponse struct {
	envelope
	Candidates []placeResult `json:"candidates"`
}

type detailsResponse struct {
	envelope
	Result *placeResult `json:"result"`
}

type geocodeResponse struct {
	envelope
	Results []struct {
		Geometry *domain.Geometry `json:"geometry"`
	} `json:"results"`
}

// ---- Public API ----

// TextSearch returns the place id of the first text-search result.
func (c *Client) TextSearch(ctx context.Context, query string) (string, error) {
	var out textSearchResponse
	if err := c.get(ctx, "textsearch", "/place/textsearch/json", url.Values{"query": {query}}, &out); err != nil {
		return "", err
	}
	if err := checkStatus(out.envelope); err != nil {
		return "", err
	}
	if len(out.Results) == 0 || out.Results[0].PlaceID == "" {
		return "", domain.ErrNotFound
	}
	return out.Results[0].PlaceID, nil
}

// FindPlace returns the first candidate for input, preferring results near bias when set.
func (c *Client) FindPlace(ctx context.Context, input string, bias *domain.LatLng) (string, error) {
	params := url.Values{
		"input":     {input},
		"inputtype": {"textquery"},
		"fields":    {"place_id,name"},
	}
	if bias != nil {
		params.Set("locationbias", "point:"+fmtCoord(bias.Lat)+","+fmtCoord(bias.Lng))
	}
	var out findPlaceResponse
	if err := c.get(ctx, "findplace", "/place/findplacefromtext/json", params, &out); err != nil {
		return "", err
	}
	if err := checkStatus(out.envelope); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || out.Candidates[0].PlaceID == "" {
		return "", domain.ErrNotFound
	}
	return out.Candidates[0].PlaceID, nil
}

// Details hydrates a place id with the DetailsFields mask.
func (c *Client) Details(ctx context.Context, placeID string) (domain.ResolvedPlace, error) {
	var out detailsResponse
	params := url.Values{"place_id": {placeID}, "fields": {DetailsFields}}
	if err := c.get(ctx, "details", "/place/details/json", params, &out); err != nil {
		return domain.ResolvedPlace{}, err
	}
	if err := checkStatus(out.envelope); err != nil {
		return domain.ResolvedPlace{}, err
	}
	if out.Result == nil || out.Result.Name == "" || out.Result.Geometry == nil {
		return domain.ResolvedPlace{}, fmt.Errorf("%w: place details without name or geometry", domain.ErrMalformedResponse)
	}
	r := out.Result
	if r.PlaceID == "" {
		r.PlaceID = placeID
	}
	return domain.ResolvedPlace{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Geometry:         *r.Geometry,
		Photos:           r.Photos,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		Website:          r.Website,
		Phone:            r.FormattedPhoneNumber,
		OpeningHours:     r.OpeningHours,
		PriceLevel:       r.PriceLevel,
		Types:            r.Types,
	}, nil
}

// Geocode returns the coordinates of the first geocoding result.
func (c *Client) Geocode(ctx context.Context, address string) (domain.LatLng, error) {
	var out geocodeResponse
	if err := c.get(ctx, "geocode", "/geocode/json", url.Values{"address": {address}}, &out); err != nil {
		return domain.LatLng{}, err
	}
	if err := checkStatus(out.envelope); err != nil {
		return domain.LatLng{}, err
	}
	if len(out.Results) == 0 || out.Results[0].Geometry == nil {
		return domain.LatLng{}, domain.ErrNotFound
	}
	return out.Results[0].Geometry.Location, nil
}

// ---- Internals ----

func checkStatus(e envelope) error {
	switch e.Status {
	case "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return domain.ErrNotFound
	case "":
		return &domain.UpstreamError{Service: service, Message: "response without status"}
	}
	msg := e.Status
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return &domain.UpstreamError{Service: service, Message: msg}
}

// get performs one rate-limited GET and decodes the JSON body into out.
// The key travels as a query parameter and is stripped from any error.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if c.key == "" {
		return domain.ErrMissingCredential
	}
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wayfinder/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.NetworkError{Service: service, Err: redact(err)}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.UpstreamError{Service: service, Status: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrMalformedResponse, endpoint, err)
	}
	return nil
}

// redact drops the request URL, which carries the key, from transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

func fmtCoord(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
