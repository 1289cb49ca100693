// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/openterra/flatarea/internal/dem"
	"github.com/openterra/flatarea/internal/geo"
	"github.com/openterra/flatarea/internal/processor"

	"github.com/rs/zerolog/log"
)

// boundary uploads beyond this are rejected outright
const maxBoundaryBytes = 4 << 20

// HandleIndex serves the embedded viewer page.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/favicon.ico" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// HandleAnalyze runs a flat-area analysis for the boundary polygon in the
// request body (KML or GeoJSON). Query parameters threshold, resolution and
// margin override the configured defaults. A run that finds no flat terrain
// answers 200 with an empty FeatureCollection.
func (s *ServerContext) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "POST a boundary polygon")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBoundaryBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	boundary, err := geo.ParseBoundary(body)
	if err != nil {
		log.Debug().Err(err).Msg("Boundary rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold := s.Config.Analysis.SlopeThresholdDegrees
	margin := s.Config.Analysis.BoundaryMargin
	resolution := dem.Resolution(s.Config.Provider.Resolution)

	q := r.URL.Query()
	if v := q.Get("threshold"); v != "" {
		threshold, err = strconv.ParseFloat(v, 64)
		if err != nil || threshold <= 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a number > 0")
			return
		}
	}
	if v := q.Get("margin"); v != "" {
		margin, err = strconv.ParseFloat(v, 64)
		if err != nil || margin < 0 {
			writeError(w, http.StatusBadRequest, "margin must be a number >= 0")
			return
		}
	}
	if v := q.Get("resolution"); v != "" {
		resolution = dem.Resolution(v)
		if _, err := resolution.DemType(); err != nil {
			writeError(w, http.StatusBadRequest, "resolution must be 30m or 90m")
			return
		}
	}

	grid, err := s.Fetcher.Fetch(boundary.BoundingBox(margin), resolution)
	if err != nil {
		log.Error().Err(err).Msg("DEM fetch failed")
		switch {
		case errors.Is(err, dem.ErrCoverageGap):
			writeError(w, http.StatusBadGateway, "requested area is outside DEM coverage")
		default:
			writeError(w, http.StatusBadGateway, "DEM provider unavailable")
		}
		return
	}

	result, err := processor.Analyze(boundary, grid, processor.Options{
		SlopeThresholdDegrees: threshold,
	})
	if err != nil {
		log.Error().Err(err).Msg("Analysis failed")
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(result.FeatureCollection())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
