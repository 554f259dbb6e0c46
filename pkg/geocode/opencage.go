package geocode

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultOpenCageURL = "https://api.opencagedata.com"

// opencageResponse is the OpenCage forward-geocode JSON response.
type opencageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Bounds *struct {
			Northeast struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"northeast"`
			Southwest struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"southwest"`
		} `json:"bounds"`
		Formatted string `json:"formatted"`
	} `json:"results"`
}

// OpenCageProvider is the optional paid last resort of the chain. It reports
// unavailable when no API key is configured, which skips the stage entirely.
type OpenCageProvider struct {
	BaseURL string

	key     string
	hc      *http.Client
	limiter *rate.Limiter
}

// NewOpenCage creates an OpenCage provider; key may be empty.
func NewOpenCage(baseURL, key string) *OpenCageProvider {
	if baseURL == "" {
		baseURL = defaultOpenCageURL
	}
	return &OpenCageProvider{
		BaseURL: baseURL,
		key:     key,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(1, 1),
	}
}

// Name implements Provider.
func (p *OpenCageProvider) Name() string { return "opencage" }

// Available implements Provider.
func (p *OpenCageProvider) Available() bool { return p.key != "" }

// Geocode implements Provider.
func (p *OpenCageProvider) Geocode(ctx context.Context, q Query) ([]Result, error) {
	params := url.Values{
		"q":     {q.Normalized},
		"key":   {p.key},
		"limit": {"10"},
	}

	var resp opencageResponse
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+"/geocode/v1/json", params, &resp); err != nil {
		return nil, err
	}

	var results []Result
	for _, oc := range resp.Results {
		lat, lon := oc.Geometry.Lat, oc.Geometry.Lng
		r := Result{
			Name:   oc.Formatted,
			Center: LatLon{Lat: lat, Lon: lon},
			BBox:   pointBBox(lat, lon),
		}
		if oc.Bounds != nil {
			r.BBox = BBox{
				South: oc.Bounds.Southwest.Lat,
				West:  oc.Bounds.Southwest.Lng,
				North: oc.Bounds.Northeast.Lat,
				East:  oc.Bounds.Northeast.Lng,
			}
		}
		results = append(results, r)
	}
	return results, nil
}
