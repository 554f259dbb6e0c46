package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultPhotonURL = "https://photon.komoot.io"

// photonResponse is Photon's GeoJSON FeatureCollection. Coordinates are
// [lon, lat]; extent is [west, north, east, south].
type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name    string    `json:"name"`
			City    string    `json:"city"`
			State   string    `json:"state"`
			Country string    `json:"country"`
			Extent  []float64 `json:"extent"`
		} `json:"properties"`
	} `json:"features"`
}

// PhotonProvider queries Komoot's Photon geocoder. It is also the chain's
// autocomplete source, since Photon is built for search-as-you-type.
type PhotonProvider struct {
	BaseURL string

	hc      *http.Client
	limiter *rate.Limiter
}

// NewPhoton creates a Photon provider.
func NewPhoton(baseURL string) *PhotonProvider {
	if baseURL == "" {
		baseURL = defaultPhotonURL
	}
	return &PhotonProvider{
		BaseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
}

// Name implements Provider.
func (p *PhotonProvider) Name() string { return "photon" }

// Available implements Provider.
func (p *PhotonProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *PhotonProvider) Geocode(ctx context.Context, q Query) ([]Result, error) {
	return p.search(ctx, q.Normalized, 10)
}

// Suggest implements Suggester.
func (p *PhotonProvider) Suggest(ctx context.Context, text string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}
	return p.search(ctx, text, limit)
}

func (p *PhotonProvider) search(ctx context.Context, text string, limit int) ([]Result, error) {
	params := url.Values{
		"q":     {text},
		"limit": {strconv.Itoa(limit)},
	}

	var resp photonResponse
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+"/api", params, &resp); err != nil {
		return nil, err
	}
	return photonResults(resp), nil
}

// Reverse implements ReverseGeocoder.
func (p *PhotonProvider) Reverse(ctx context.Context, lat, lon float64) ([]Result, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	var resp photonResponse
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+"/reverse", params, &resp); err != nil {
		return nil, err
	}
	return photonResults(resp), nil
}

func photonResults(resp photonResponse) []Result {
	var results []Result
	for _, f := range resp.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]

		r := Result{
			Name:   photonDisplayName(f.Properties.Name, f.Properties.City, f.Properties.State, f.Properties.Country),
			Center: LatLon{Lat: lat, Lon: lon},
			BBox:   pointBBox(lat, lon),
		}
		if ext := f.Properties.Extent; len(ext) == 4 {
			r.BBox = BBox{West: ext[0], North: ext[1], East: ext[2], South: ext[3]}
		}
		results = append(results, r)
	}
	return results
}

func photonDisplayName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
