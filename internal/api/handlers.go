// Package api wires the core reachability operations behind an HTTP
// boundary, matching the path segments of spec §6. Rendering endpoints
// (agl_image, height_image, raw_height_image, kml) are PNG/KML renderers —
// explicitly out of scope (spec §1 "out of scope: external collaborators")
// — and are not implemented here; flying_sites (a fixed takeoff-site
// gazetteer) is likewise not part of the four core operations this layer
// exposes.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"hikefly/internal/service"
)

// Handlers holds the service façade every route dispatches to.
type Handlers struct {
	svc *service.Service
	log *slog.Logger
}

// New builds a Handlers bound to svc.
func New(svc *service.Service, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{svc: svc, log: log}
}

// LocationSupported handles GET /location_supported?lat=&lon=.
func (h *Handlers) LocationSupported(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"supported": h.svc.LocationSupported(lat, lon)})
}

// HeightAtPoint handles GET /height?lat=&lon=, the get_height_at_point op.
func (h *Handlers) HeightAtPoint(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}
	height, err := h.svc.GetHeightAtPoint(lat, lon)
	if err != nil {
		h.log.Warn("get_height_at_point failed", "lat", lat, "lon", lon, "error", err)
		respondNotFound(w, "no elevation data for this location")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int16{"height": height})
}

// PlaceSearch handles GET /search?q=&max_results=, the place_search op.
func (h *Handlers) PlaceSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondBadRequest(w, "q is required")
		return
	}
	maxResults := 10
	if v := r.URL.Query().Get("max_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxResults = n
		}
	}
	respondJSON(w, http.StatusOK, h.svc.PlaceSearch(q, maxResults))
}

// FlightCone handles GET /flight_cone?lat=&lon=&... — search_from_point, the
// core reachability query. Named after spec §6's flight_cone path segment.
func (h *Handlers) FlightCone(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	params := service.SearchParams{
		CellSize:         parseFloatParam(q, "cell_size"),
		GlideNumber:      parseFloatParam(q, "glide_number"),
		AdditionalHeight: parseFloatParam(q, "additional_height"),
		WindSpeed:        parseFloatParam(q, "wind_speed"),
		WindDirectionDeg: parseFloatParam(q, "wind_direction"),
		TrimSpeed:        parseFloatParam(q, "trim_speed"),
		SafetyMargin:     parseFloatParam(q, "safety_margin"),
		StartDistance:    parseFloatParam(q, "start_distance"),
	}
	if v := q.Get("start_height"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.StartHeight = &f
		}
	}
	targetCellSize := params.CellSize

	result, err := h.svc.SearchFromPoint(r.Context(), lat, lon, targetCellSize, params)
	if err != nil {
		h.log.Error("search_from_point failed", "lat", lat, "lon", lon, "error", err)
		respondInternalError(w, "search failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func parseLatLon(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	q := r.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" || lonStr == "" {
		respondBadRequest(w, "lat and lon are required")
		return 0, 0, false
	}
	var err error
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		respondBadRequest(w, "invalid lat")
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		respondBadRequest(w, "invalid lon")
		return 0, 0, false
	}
	return lat, lon, true
}

func parseFloatParam(q map[string][]string, key string) float64 {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(vs[0], 64)
	if err != nil {
		return 0
	}
	return f
}
