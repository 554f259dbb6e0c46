package geocode

import (
	"context"
	_ "embed"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/riverbend-maps/gagemap/internal/geoquery"
)

const (
	defaultCensusURL  = "https://geocoding.geo.census.gov"
	censusOneLinePath = "/geocoder/locations/onelineaddress"
	censusAddressPath = "/geocoder/locations/address"
	benchmarkCurrent  = "Public_AR_Current"
	benchmark2020     = "Public_AR_Census2020"
)

// censusResponse is the JSON response from both Census location endpoints.
type censusResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X float64 `json:"x"` // longitude
				Y float64 `json:"y"` // latitude
			} `json:"coordinates"`
			MatchedAddress string `json:"matchedAddress"`
		} `json:"addressMatches"`
	} `json:"result"`
}

//go:embed cityzips.yaml
var cityZipYAML []byte

// cityZipHints maps lowercase "city, st" to candidate ZIP codes. Rural
// structured queries often fail without a ZIP; these hints cover the gage
// country the app is mostly used in.
var cityZipHints = func() map[string][]string {
	m := make(map[string][]string)
	if err := yaml.Unmarshal(cityZipYAML, &m); err != nil {
		// The table is compiled in; a parse failure is a build defect.
		panic(err)
	}
	return m
}()

var addressCaser = cases.Title(language.AmericanEnglish)

// CensusOneLineProvider submits the normalized one-line query to the Census
// geocoder. US-domestic queries only.
type CensusOneLineProvider struct {
	BaseURL string

	hc      *http.Client
	limiter *rate.Limiter
}

// NewCensusOneLine creates a Census one-line provider.
func NewCensusOneLine(baseURL string) *CensusOneLineProvider {
	if baseURL == "" {
		baseURL = defaultCensusURL
	}
	return &CensusOneLineProvider{
		BaseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(10, 10),
	}
}

// Name implements Provider.
func (p *CensusOneLineProvider) Name() string { return "census-oneline" }

// Available implements Provider.
func (p *CensusOneLineProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *CensusOneLineProvider) Geocode(ctx context.Context, q Query) ([]Result, error) {
	if !q.LikelyUS {
		return nil, nil
	}

	params := url.Values{
		"address":   {q.Normalized},
		"benchmark": {benchmarkCurrent},
		"format":    {"json"},
	}

	var resp censusResponse
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+censusOneLinePath, params, &resp); err != nil {
		return nil, err
	}
	return censusResults(resp), nil
}

// CensusStructuredProvider geocodes via the Census structured-parts endpoint
// using the split street/city/state/zip. When no ZIP was parsed it retries
// with candidate ZIPs from the city hint table, each followed by a
// ZIP-without-city attempt; if the Public_AR_Current benchmark yields nothing
// the whole sequence repeats against Public_AR_Census2020.
type CensusStructuredProvider struct {
	BaseURL string

	hc      *http.Client
	limiter *rate.Limiter
}

// NewCensusStructured creates a Census structured-parts provider.
func NewCensusStructured(baseURL string) *CensusStructuredProvider {
	if baseURL == "" {
		baseURL = defaultCensusURL
	}
	return &CensusStructuredProvider{
		BaseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(10, 10),
	}
}

// Name implements Provider.
func (p *CensusStructuredProvider) Name() string { return "census-structured" }

// Available implements Provider.
func (p *CensusStructuredProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *CensusStructuredProvider) Geocode(ctx context.Context, q Query) ([]Result, error) {
	if !q.LikelyUS || q.Parts.Street == "" {
		return nil, nil
	}

	for _, benchmark := range []string{benchmarkCurrent, benchmark2020} {
		results, err := p.tryBenchmark(ctx, q.Parts, benchmark)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return nil, nil
}

// tryBenchmark runs the structured attempt sequence for one benchmark.
func (p *CensusStructuredProvider) tryBenchmark(ctx context.Context, parts geoquery.Parts, benchmark string) ([]Result, error) {
	attempts := []geoquery.Parts{parts}
	if parts.Zip == "" {
		hintKey := strings.ToLower(strings.TrimSpace(parts.City)) + ", " + strings.ToLower(parts.State)
		for _, zip := range cityZipHints[hintKey] {
			withZip := parts
			withZip.Zip = zip
			attempts = append(attempts, withZip)

			noCity := withZip
			noCity.City = ""
			attempts = append(attempts, noCity)
		}
	}

	for _, attempt := range attempts {
		results, err := p.query(ctx, attempt, benchmark)
		if err != nil {
			// A failed attempt within the sequence is logged and skipped; the
			// provider only comes up empty when every attempt does.
			zap.L().Debug("census structured attempt failed",
				zap.String("benchmark", benchmark),
				zap.Error(err),
			)
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return nil, nil
}

func (p *CensusStructuredProvider) query(ctx context.Context, parts geoquery.Parts, benchmark string) ([]Result, error) {
	params := url.Values{
		"street":    {parts.Street},
		"benchmark": {benchmark},
		"format":    {"json"},
	}
	if parts.City != "" {
		params.Set("city", parts.City)
	}
	if parts.State != "" {
		params.Set("state", parts.State)
	}
	if parts.Zip != "" {
		params.Set("zip", parts.Zip)
	}

	var resp censusResponse
	if err := getJSON(ctx, p.hc, p.limiter, p.BaseURL+censusAddressPath, params, &resp); err != nil {
		return nil, err
	}
	return censusResults(resp), nil
}

// censusResults maps Census matches to neutral results. Census returns
// all-caps matched addresses and no extent, so the name is title-cased and
// the box synthesized around the point.
func censusResults(resp censusResponse) []Result {
	var results []Result
	for _, m := range resp.Result.AddressMatches {
		lat, lon := m.Coordinates.Y, m.Coordinates.X
		results = append(results, Result{
			Name:   addressCaser.String(strings.ToLower(m.MatchedAddress)),
			Center: LatLon{Lat: lat, Lon: lon},
			BBox:   pointBBox(lat, lon),
		})
	}
	return results
}
