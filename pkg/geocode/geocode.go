// Package geocode resolves free-form location queries through a fallback
// chain of public geocoding services. Each provider adapts one upstream API
// to a neutral result shape; the chain tries them in order of precision and
// cost until one produces results.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/time/rate"

	"github.com/riverbend-maps/gagemap/internal/geoquery"
)

const userAgent = "gagemap/1.0 (stream gage explorer)"

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BBox is a geographic bounding box in degrees.
type BBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Bounds converts the box to geom bounds in XY (lon, lat) order.
func (b BBox) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(b.West, b.South, b.East, b.North)
}

// BBoxFromBounds converts geom bounds back to a BBox.
func BBoxFromBounds(bounds *geom.Bounds) BBox {
	return BBox{
		South: bounds.Min(1),
		West:  bounds.Min(0),
		North: bounds.Max(1),
		East:  bounds.Max(0),
	}
}

// pointBBox synthesizes a small box around a point for providers that return
// no extent.
func pointBBox(lat, lon float64) BBox {
	const pad = 0.005
	return BBox{South: lat - pad, West: lon - pad, North: lat + pad, East: lon + pad}
}

// Result is one geocoding match in provider-neutral form.
type Result struct {
	Name   string `json:"name"`
	Center LatLon `json:"center"`
	BBox   BBox   `json:"bbox"`
}

// Query is a classified, normalized geocoding request. Viewport, when set,
// biases or restricts viewport-aware providers.
type Query struct {
	Raw        string
	Normalized string
	LikelyUS   bool
	Parts      geoquery.Parts
	Viewport   *geom.Bounds
}

// NewQuery classifies and normalizes a raw query string. US-looking queries
// get address normalization and a structured street/city/state/zip split;
// everything else gets light separator cleanup only.
func NewQuery(raw string) Query {
	q := Query{Raw: raw, LikelyUS: geoquery.IsLikelyUS(raw)}
	if q.LikelyUS {
		q.Normalized = geoquery.NormalizeUS(raw)
		q.Parts = geoquery.SplitUSAddress(q.Normalized)
	} else {
		q.Normalized = geoquery.NormalizeIntl(raw)
	}
	return q
}

// Provider is one stage of the geocoding chain. Geocode returns an empty
// slice for "no match" and an error only for transport or decode failures;
// the chain treats both as "try the next stage".
type Provider interface {
	Name() string
	Available() bool
	Geocode(ctx context.Context, q Query) ([]Result, error)
}

// Suggester produces autocomplete candidates for a partial query.
type Suggester interface {
	Suggest(ctx context.Context, text string, limit int) ([]Result, error)
}

// ReverseGeocoder resolves a coordinate to named places.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) ([]Result, error)
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
// Non-200 statuses and undecodable bodies are errors.
func getJSON(ctx context.Context, hc *http.Client, limiter *rate.Limiter, rawURL string, params url.Values, out any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "geocode: rate limit wait")
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return eris.Wrapf(err, "geocode: parse url %s", rawURL)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrapf(err, "geocode: GET %s", u.Host)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("geocode: %s returned status %d", u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "geocode: read body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "geocode: decode response from %s", u.Host)
	}
	return nil
}
