package server

import (
	"github.com/openterra/flatarea/assets"
	"github.com/openterra/flatarea/internal/config"
	"github.com/openterra/flatarea/internal/dem"
	"github.com/openterra/flatarea/internal/geo"
	"github.com/openterra/flatarea/internal/raster"

	"github.com/rs/zerolog/log"
)

// DemFetcher abstracts the elevation provider so handlers can be tested
// without network access. *dem.Client satisfies it.
type DemFetcher interface {
	Fetch(bbox geo.BBox, res dem.Resolution) (*raster.Grid, error)
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Fetcher   DemFetcher
	IndexHTML []byte
	Favicon   []byte
}

// NewServerContext initializes the context with the configured DEM provider.
func NewServerContext(cfg *config.Config, fetcher DemFetcher) *ServerContext {
	log.Info().
		Str("resolution", cfg.Provider.Resolution).
		Float64("threshold_deg", cfg.Analysis.SlopeThresholdDegrees).
		Float64("margin", cfg.Analysis.BoundaryMargin).
		Msg("Initializing server context")

	return &ServerContext{
		Config:    cfg,
		Fetcher:   fetcher,
		IndexHTML: assets.Index,
		Favicon:   assets.Favicon,
	}
}
