package geocode

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultArcGISURL = "https://geocode.arcgis.com"

const arcgisFindPath = "/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"

// arcgisResponse is the findAddressCandidates JSON response.
type arcgisResponse struct {
	Candidates []struct {
		Location struct {
			X float64 `json:"x"` // longitude
			Y float64 `json:"y"` // latitude
		} `json:"location"`
		Extent *struct {
			XMin float64 `json:"xmin"`
			YMin float64 `json:"ymin"`
			XMax float64 `json:"xmax"`
			YMax float64 `json:"ymax"`
		} `json:"extent"`
		Attributes struct {
			MatchAddr string `json:"Match_addr"`
		} `json:"attributes"`
	} `json:"candidates"`
}

// ArcGISProvider queries the ArcGIS World geocoder, the most permissive stage
// of the chain before the optional OpenCage fallback.
type ArcGISProvider struct {
	BaseURL string

	hc      *http.Client
	limiter *rate.Limiter
}

// NewArcGIS creates an ArcGIS provider.
func NewArcGIS(baseURL string) *ArcGISProvider {
	if baseURL == "" {
		baseURL = defaultArcGISURL
	}
	return &ArcGISProvider{
		BaseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
}

// Name implements Provider.
func (p *ArcGISProvider) Name() string { return "arcgis" }

// Available implements Provider.
func (p *ArcGISProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *ArcGISProvider) Geocode(ctx context.Context, q Query) ([]Result, error) {
	params := url.Values{
		"SingleLine":   {q.Normalized},
		"f":            {"json"},
		"outFields":    {"Match_addr"},
		"maxLocations": {"10"},
	}
	if q.LikelyUS {
		params.Set("sourceCountry", "USA")
	}

	var resp arcgisResponse
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+arcgisFindPath, params, &resp); err != nil {
		return nil, err
	}

	var results []Result
	for _, c := range resp.Candidates {
		lat, lon := c.Location.Y, c.Location.X
		r := Result{
			Name:   c.Attributes.MatchAddr,
			Center: LatLon{Lat: lat, Lon: lon},
			BBox:   pointBBox(lat, lon),
		}
		if c.Extent != nil {
			r.BBox = BBox{South: c.Extent.YMin, West: c.Extent.XMin, North: c.Extent.YMax, East: c.Extent.XMax}
		}
		results = append(results, r)
	}
	return results, nil
}
