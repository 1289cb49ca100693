package main

import (
	"errors"
	"os"

	"github.com/openterra/flatarea/internal/config"
	"github.com/openterra/flatarea/internal/dem"
	"github.com/openterra/flatarea/internal/geo"
	"github.com/openterra/flatarea/internal/logger"
	"github.com/openterra/flatarea/internal/processor"
	"github.com/openterra/flatarea/internal/raster"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config"     env:"CONFIG_FILE"       description:"Path to configuration file"`
	Boundary   string   `short:"b" long:"boundary"   env:"BOUNDARY_FILE"     description:"Boundary polygon file (KML or GeoJSON)" required:"true"`
	Output     string   `short:"o" long:"out"        env:"OUTPUT_FILE"       description:"Flat-area GeoJSON output path (default flat.geojson)"`
	KMLOutput  string   `short:"k" long:"kml"        env:"KML_OUTPUT_FILE"   description:"Also write the flat areas as KML to this path"`
	Overlay    string   `long:"overlay"              env:"OVERLAY_FILE"      description:"Write a classified slope overlay (webp + worldfile)"`
	Threshold  float64  `short:"t" long:"threshold"  env:"SLOPE_THRESHOLD"   description:"Slope threshold in degrees (default 2.0)"`
	Margin     *float64 `short:"m" long:"margin"     env:"BOUNDARY_MARGIN"   description:"Bounding box margin in coordinate units (default 0.001)"`
	Resolution string   `short:"r" long:"resolution" env:"DEM_RESOLUTION"    description:"DEM resolution (default 30m)" choice:"30m" choice:"90m"`
	APIKey     string   `long:"api-key"              env:"OPENTOPO_API_KEY"  description:"OpenTopography API key"`
	LocalDEM   string   `long:"local-dem"            env:"LOCAL_DEM_DIR"     description:"Directory of local GeoTIFF DEM tiles (skips the HTTP provider)"`
	Scale      int      `long:"overlay-scale"        env:"OVERLAY_SCALE"     description:"Integer upscale factor for the overlay image" default:"1"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := &config.Config{}
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		cfg = loaded
	} else {
		cfg.ApplyDefaults()
	}

	applyFlagOverrides(cfg, &opts)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Stage 1: load the boundary
	boundary, err := geo.LoadBoundary(opts.Boundary)
	if err != nil {
		log.Fatal().Err(err).Str("stage", "load").Str("path", opts.Boundary).Msg("Failed to load boundary")
	}

	bbox := boundary.BoundingBox(cfg.Analysis.BoundaryMargin)
	log.Info().
		Str("boundary", opts.Boundary).
		Float64("west", bbox.MinX).
		Float64("east", bbox.MaxX).
		Float64("south", bbox.MinY).
		Float64("north", bbox.MaxY).
		Msg("Boundary loaded")

	// Stage 2: fetch the elevation grid
	grid, err := fetchDEM(cfg, bbox)
	if err != nil {
		log.Fatal().Err(err).Str("stage", "fetch").Msg("Failed to fetch DEM")
	}

	// Stage 3: compute
	result, err := processor.Analyze(boundary, grid, processor.Options{
		SlopeThresholdDegrees: cfg.Analysis.SlopeThresholdDegrees,
	})
	if err != nil {
		log.Fatal().Err(err).Str("stage", "compute").Msg("Analysis failed")
	}

	if result.Empty() {
		log.Info().Msg("No flat terrain found within the boundary")
	}

	if err := processor.SaveGeoJSON(cfg.Output.GeoJSON, result.FeatureCollection()); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Output.GeoJSON).Msg("Failed to write GeoJSON output")
	}
	log.Info().Str("path", cfg.Output.GeoJSON).Int("regions", len(result.Regions)).Msg("Flat-area GeoJSON written")

	if opts.KMLOutput != "" {
		data, err := geo.WriteKML(result.Regions, "flat areas")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode KML output")
		}
		if err := os.WriteFile(opts.KMLOutput, data, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.KMLOutput).Msg("Failed to write KML output")
		}
		log.Info().Str("path", opts.KMLOutput).Msg("Flat-area KML written")
	}

	if cfg.Output.Overlay != "" {
		if err := processor.WriteSlopeOverlay(cfg.Output.Overlay, result.Slope, opts.Scale); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Output.Overlay).Msg("Failed to write slope overlay")
		}
		log.Info().Str("path", cfg.Output.Overlay).Msg("Slope overlay written")
	}
}

// applyFlagOverrides layers explicitly passed flags over the loaded
// configuration. Options left at their zero value defer to the file, so the
// flag struct carries no go-flags defaults for config-backed settings; margin
// is a pointer because 0 is a meaningful value for it.
func applyFlagOverrides(cfg *config.Config, opts *Options) {
	if opts.Threshold > 0 {
		cfg.Analysis.SlopeThresholdDegrees = opts.Threshold
	}
	if opts.Margin != nil {
		cfg.Analysis.BoundaryMargin = *opts.Margin
	}
	if opts.Resolution != "" {
		cfg.Provider.Resolution = opts.Resolution
	}
	if opts.APIKey != "" {
		cfg.Provider.APIKey = opts.APIKey
	}
	if opts.LocalDEM != "" {
		cfg.Provider.LocalDir = opts.LocalDEM
	}
	if opts.Output != "" {
		cfg.Output.GeoJSON = opts.Output
	}
	if opts.Overlay != "" {
		cfg.Output.Overlay = opts.Overlay
	}
}

func fetchDEM(cfg *config.Config, bbox geo.BBox) (*raster.Grid, error) {
	resolution := dem.Resolution(cfg.Provider.Resolution)

	if cfg.Provider.LocalDir != "" {
		sampler, err := dem.NewLocalService(cfg.Provider.LocalDir)
		if err != nil {
			return nil, err
		}
		return dem.FetchLocal(sampler, bbox, resolution)
	}

	client := dem.NewClient(cfg.Provider.Endpoint, cfg.Provider.APIKey)
	grid, err := client.Fetch(bbox, resolution)
	if err != nil && errors.Is(err, dem.ErrCoverageGap) {
		log.Warn().Msg("Requested area has no DEM coverage; check the boundary coordinates")
	}
	return grid, err
}
