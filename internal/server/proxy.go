package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/riverbend-maps/gagemap/internal/model"
)

const (
	defaultUSGSURL       = "https://waterservices.usgs.gov"
	defaultWikipediaURL  = "https://en.wikipedia.org"
	defaultWhat3WordsURL = "https://api.what3words.com"
	defaultNASAURL       = "https://api.nasa.gov"
)

// Gateway proxies third-party geodata APIs so their keys never reach the
// browser. Responses pass through whole-body, no reshaping.
type Gateway struct {
	USGSBase       string
	WikipediaBase  string
	What3WordsBase string
	NASABase       string

	What3WordsKey string
	NASAKey       string

	hc  *http.Client
	log *zap.Logger
}

// NewGateway creates a Gateway; empty base URLs get the production defaults.
func NewGateway(usgsBase, what3wordsKey, nasaKey string, log *zap.Logger) *Gateway {
	if usgsBase == "" {
		usgsBase = defaultUSGSURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		USGSBase:       usgsBase,
		WikipediaBase:  defaultWikipediaURL,
		What3WordsBase: defaultWhat3WordsURL,
		NASABase:       defaultNASAURL,
		What3WordsKey:  what3wordsKey,
		NASAKey:        nasaKey,
		hc:             &http.Client{Timeout: 30 * time.Second},
		log:            log,
	}
}

// Mount attaches the gateway routes under /gateway.
func (g *Gateway) Mount(r chi.Router) {
	r.Route("/gateway", func(r chi.Router) {
		r.Get("/usgs/iv", g.handleUSGS)
		r.Get("/wikipedia", g.handleWikipedia)
		r.Get("/what3words", g.handleWhat3Words)
		r.Get("/nasa/imagery", g.handleNASA)
	})
}

// handleUSGS forwards instantaneous-values requests to NWIS. Client query
// params (sites, bBox, parameterCd, period) pass through as-is; format is
// pinned to JSON.
func (g *Gateway) handleUSGS(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	params.Set("format", "json")
	g.passthrough(w, r, g.USGSBase+"/nwis/iv/", params)
}

// handleWikipedia runs a geosearch around a coordinate.
func (g *Gateway) handleWikipedia(w http.ResponseWriter, r *http.Request) {
	lat := r.URL.Query().Get("lat")
	lon := r.URL.Query().Get("lon")
	if lat == "" || lon == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon are required"})
		return
	}
	radius := r.URL.Query().Get("radius")
	if radius == "" {
		radius = "10000"
	}

	params := url.Values{
		"action":   {"query"},
		"list":     {"geosearch"},
		"gscoord":  {lat + "|" + lon},
		"gsradius": {radius},
		"gslimit":  {"25"},
		"format":   {"json"},
		"origin":   {"*"},
	}
	g.passthrough(w, r, g.WikipediaBase+"/w/api.php", params)
}

// handleWhat3Words converts a coordinate to a three-word address, attaching
// the configured key.
func (g *Gateway) handleWhat3Words(w http.ResponseWriter, r *http.Request) {
	if g.What3WordsKey == "" {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "what3words is not configured"})
		return
	}
	lat := r.URL.Query().Get("lat")
	lon := r.URL.Query().Get("lon")
	if lat == "" || lon == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon are required"})
		return
	}

	params := url.Values{
		"coordinates": {lat + "," + lon},
		"key":         {g.What3WordsKey},
	}
	g.passthrough(w, r, g.What3WordsBase+"/v3/convert-to-3wa", params)
}

// handleNASA fetches satellite imagery metadata for a coordinate, attaching
// the configured key.
func (g *Gateway) handleNASA(w http.ResponseWriter, r *http.Request) {
	if g.NASAKey == "" {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "nasa imagery is not configured"})
		return
	}
	lat := r.URL.Query().Get("lat")
	lon := r.URL.Query().Get("lon")
	if lat == "" || lon == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon are required"})
		return
	}

	params := url.Values{
		"lat":     {lat},
		"lon":     {lon},
		"api_key": {g.NASAKey},
	}
	if dim := r.URL.Query().Get("dim"); dim != "" {
		params.Set("dim", dim)
	}
	g.passthrough(w, r, g.NASABase+"/planetary/earth/imagery", params)
}

// passthrough performs the upstream GET and copies status, content type, and
// body back to the client. Transport failures and upstream non-2xx statuses
// both surface as 502.
func (g *Gateway) passthrough(w http.ResponseWriter, r *http.Request, rawURL string, params url.Values) {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u, nil)
	if err != nil {
		g.writeGatewayError(w, eris.Wrap(err, "gateway: build request"))
		return
	}
	req.Header.Set("User-Agent", "gagemap/1.0 (stream gage explorer)")

	resp, err := g.hc.Do(req)
	if err != nil {
		g.writeGatewayError(w, eris.Wrap(err, "gateway: upstream request"))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.writeGatewayError(w, eris.Wrap(model.ErrGateway,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode)))
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

func (g *Gateway) writeGatewayError(w http.ResponseWriter, err error) {
	g.log.Warn("gateway request failed", zap.Error(err))
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}
