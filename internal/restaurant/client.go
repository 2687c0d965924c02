// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"

	"github.com/taibuivan/tablefinder/internal/platform/constants"
)

// maxResponseBytes caps upstream bodies; a dense city center stays well below it.
const maxResponseBytes = 8 << 20

// userAgent identifies the service to Nominatim, whose usage policy requires one.
const userAgent = constants.AppName + "/" + constants.AppVersion

// ErrUpstream marks a failed or unparseable upstream response.
var ErrUpstream = errors.New("restaurant: upstream failure")

// ClientConfig holds the endpoints and limits of the lookup client.
type ClientConfig struct {
	GeocoderURL   string
	OverpassURL   string
	RadiusMeters  int
	Timeout       time.Duration
	MaxTries      uint
	RetryInterval time.Duration
}

// Client queries Nominatim for city coordinates and Overpass for restaurant nodes.
//
// Transient upstream failures (network errors, 429, 5xx) are retried with
// exponential backoff; any other non-200 status fails immediately.
type Client struct {
	httpClient    *http.Client
	geocoderURL   string
	overpassURL   string
	radiusMeters  int
	maxTries      uint
	retryInterval time.Duration
}

// NewClient constructs a [Client] from cfg, filling in retry defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 250 * time.Millisecond
	}

	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		geocoderURL:   strings.TrimRight(cfg.GeocoderURL, "/"),
		overpassURL:   cfg.OverpassURL,
		radiusMeters:  cfg.RadiusMeters,
		maxTries:      cfg.MaxTries,
		retryInterval: cfg.RetryInterval,
	}
}

/*
ByCity geocodes city and returns the restaurants around its first match.

Returns:
  - []Place: Empty (not nil) when the city is unknown
  - error: ErrUpstream on transport or decoding failures
*/
func (client *Client) ByCity(ctx context.Context, city string) ([]Place, error) {
	lat, lon, found, err := client.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Place{}, nil
	}
	return client.ByCoordinates(ctx, lat, lon)
}

// Geocode resolves city to the coordinates of Nominatim's first hit.
func (client *Client) Geocode(ctx context.Context, city string) (lat, lon float64, found bool, err error) {
	params := url.Values{"q": {city}, "format": {"json"}}
	body, err := client.get(ctx, client.geocoderURL+"/search?"+params.Encode())
	if err != nil {
		return 0, 0, false, err
	}

	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return 0, 0, false, fmt.Errorf("%w: geocoder returned a non-array body", ErrUpstream)
	}

	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return 0, 0, false, nil
	}

	// Nominatim encodes coordinates as JSON strings.
	lat, latErr := strconv.ParseFloat(first.Get("lat").String(), 64)
	lon, lonErr := strconv.ParseFloat(first.Get("lon").String(), 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false, fmt.Errorf("%w: geocoder hit without usable coordinates", ErrUpstream)
	}

	return lat, lon, true, nil
}

/*
ByCoordinates lists named restaurant nodes within the configured radius.

Elements without a name tag are skipped.
*/
func (client *Client) ByCoordinates(ctx context.Context, lat, lon float64) ([]Place, error) {
	query := fmt.Sprintf(`[out:json];node["amenity"="restaurant"](around:%d,%s,%s);out;`,
		client.radiusMeters,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
	)

	body, err := client.get(ctx, client.overpassURL+"?"+url.Values{"data": {query}}.Encode())
	if err != nil {
		return nil, err
	}

	elements := gjson.GetBytes(body, "elements")
	if !gjson.ValidBytes(body) || !elements.IsArray() {
		return nil, fmt.Errorf("%w: overpass returned no elements array", ErrUpstream)
	}

	places := make([]Place, 0, len(elements.Array()))
	elements.ForEach(func(_, element gjson.Result) bool {
		name := element.Get("tags.name")
		if name.Exists() && name.String() != "" {
			places = append(places, Place{
				Name: name.String(),
				Lat:  element.Get("lat").Float(),
				Lon:  element.Get("lon").Float(),
			})
		}
		return true
	})

	return places, nil
}

// get fetches endpoint, retrying transient failures.
func (client *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	operation := func() ([]byte, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrUpstream, err))
		}
		request.Header.Set("User-Agent", userAgent)
		request.Header.Set("Accept", "application/json")

		response, err := client.httpClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		defer response.Body.Close()

		body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
		}

		switch {
		case response.StatusCode == http.StatusOK:
			return body, nil
		case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= http.StatusInternalServerError:
			return nil, fmt.Errorf("%w: status %d", ErrUpstream, response.StatusCode)
		default:
			return nil, backoff.Permanent(fmt.Errorf("%w: status %d", ErrUpstream, response.StatusCode))
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = client.retryInterval
	policy.MaxInterval = 8 * client.retryInterval

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(client.maxTries),
	)
}
