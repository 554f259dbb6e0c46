package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// nominatimPlace is one element of the Nominatim search/reverse response.
// Coordinates arrive as strings; boundingbox is [south, north, west, east].
type nominatimPlace struct {
	Lat         string    `json:"lat"`
	Lon         string    `json:"lon"`
	DisplayName string    `json:"display_name"`
	BoundingBox [4]string `json:"boundingbox"`
}

// NominatimProvider queries OSM Nominatim. The bounded variant restricts
// results to the query viewport and is the most precise stage of the chain;
// it skips queries that carry no viewport at all.
type NominatimProvider struct {
	BaseURL string
	Bounded bool

	hc      *http.Client
	limiter *rate.Limiter
}

// NewNominatim creates a Nominatim provider. Usage policy caps public
// Nominatim at one request per second.
func NewNominatim(baseURL string, bounded bool) *NominatimProvider {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	return &NominatimProvider{
		BaseURL: baseURL,
		Bounded: bounded,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(1, 1),
	}
}

// Name implements Provider.
func (p *NominatimProvider) Name() string {
	if p.Bounded {
		return "nominatim-bounded"
	}
	return "nominatim"
}

// Available implements Provider.
func (p *NominatimProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *NominatimProvider) Geocode(ctx context.Context, q Query) ([]Result, error) {
	if p.Bounded && q.Viewport == nil {
		return nil, nil
	}

	params := url.Values{
		"q":      {q.Normalized},
		"format": {"jsonv2"},
		"limit":  {"10"},
	}
	if q.LikelyUS {
		params.Set("countrycodes", "us")
	}
	if p.Bounded {
		// viewbox is x1,y1,x2,y2 (lon,lat pairs).
		params.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g",
			q.Viewport.Min(0), q.Viewport.Min(1), q.Viewport.Max(0), q.Viewport.Max(1)))
		params.Set("bounded", "1")
	}

	var places []nominatimPlace
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+"/search", params, &places); err != nil {
		return nil, err
	}
	return nominatimResults(places)
}

// Reverse implements ReverseGeocoder.
func (p *NominatimProvider) Reverse(ctx context.Context, lat, lon float64) ([]Result, error) {
	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format": {"jsonv2"},
	}

	var place nominatimPlace
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+"/reverse", params, &place); err != nil {
		return nil, err
	}
	if place.DisplayName == "" {
		return nil, nil
	}
	return nominatimResults([]nominatimPlace{place})
}

func nominatimResults(places []nominatimPlace) ([]Result, error) {
	var results []Result
	for _, pl := range places {
		lat, err := strconv.ParseFloat(pl.Lat, 64)
		if err != nil {
			return nil, err
		}
		lon, err := strconv.ParseFloat(pl.Lon, 64)
		if err != nil {
			return nil, err
		}

		r := Result{
			Name:   pl.DisplayName,
			Center: LatLon{Lat: lat, Lon: lon},
			BBox:   pointBBox(lat, lon),
		}
		if box, err := parseNominatimBox(pl.BoundingBox); err == nil {
			r.BBox = box
		}
		results = append(results, r)
	}
	return results, nil
}

func parseNominatimBox(raw [4]string) (BBox, error) {
	var vals [4]float64
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return BBox{}, err
		}
		vals[i] = v
	}
	return BBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}, nil
}
