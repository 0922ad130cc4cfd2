package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hikefly/internal/service"
	"hikefly/pkg/config"
)

func newTestHandlers() *Handlers {
	cfg := config.DefaultConfig()
	svc := service.New(cfg, nil, nil, nil, nil)
	return New(svc, nil)
}

func TestLocationSupportedRequiresLatLon(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/location_supported?lat=46.0", nil)
	w := httptest.NewRecorder()
	h.LocationSupported(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Error == nil {
		t.Fatal("expected an error envelope")
	}
}

func TestLocationSupportedRejectsUnparsableLat(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/location_supported?lat=notanumber&lon=7.0", nil)
	w := httptest.NewRecorder()
	h.LocationSupported(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHeightAtPointRequiresLatLon(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/height", nil)
	w := httptest.NewRecorder()
	h.HeightAtPoint(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestFlightConeRequiresLatLon(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/flight_cone?glide_number=8", nil)
	w := httptest.NewRecorder()
	h.FlightCone(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPlaceSearchRequiresQuery(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	h.PlaceSearch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestPlaceSearchWithoutIndexReturnsEmpty covers the disabled-autocomplete
// case (no place index loaded): the handler should still answer 200 with an
// empty result set rather than erroring.
func TestPlaceSearchWithoutIndexReturnsEmpty(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/search?q=cham", nil)
	w := httptest.NewRecorder()
	h.PlaceSearch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Error != nil {
		t.Fatalf("unexpected error envelope: %+v", body.Error)
	}
}

func TestParseFloatParamDefaultsToZero(t *testing.T) {
	q := map[string][]string{"wind_speed": {"3.5"}}
	if v := parseFloatParam(q, "wind_speed"); v != 3.5 {
		t.Errorf("parseFloatParam(wind_speed) = %v, want 3.5", v)
	}
	if v := parseFloatParam(q, "missing"); v != 0 {
		t.Errorf("parseFloatParam(missing) = %v, want 0", v)
	}
	q["bad"] = []string{"not-a-float"}
	if v := parseFloatParam(q, "bad"); v != 0 {
		t.Errorf("parseFloatParam(bad) = %v, want 0", v)
	}
}

func TestRespondJSONAndRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	respondJSON(w, http.StatusOK, map[string]int{"x": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	w = httptest.NewRecorder()
	respondBadRequest(w, "bad input")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Error == nil || body.Error.Message != "bad input" {
		t.Errorf("Error = %+v, want message %q", body.Error, "bad input")
	}
}
