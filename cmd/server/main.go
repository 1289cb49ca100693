package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/openterra/flatarea/internal/config"
	"github.com/openterra/flatarea/internal/dem"
	"github.com/openterra/flatarea/internal/logger"
	"github.com/openterra/flatarea/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE"      description:"Path to configuration file"`
	Addr       string `short:"a" long:"addr"    env:"LISTEN_ADDRESS"   description:"Address to listen on" default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"    env:"LISTEN_PORT"      description:"Port to listen on"    default:"8080"`
	APIKey     string `long:"api-key"           env:"OPENTOPO_API_KEY" description:"OpenTopography API key"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
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

	if opts.APIKey != "" {
		cfg.Provider.APIKey = opts.APIKey
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	fetcher := dem.NewClient(cfg.Provider.Endpoint, cfg.Provider.APIKey)
	srvCtx := server.NewServerContext(cfg, fetcher)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srvCtx.HandleHealth)
	mux.HandleFunc("/api/analyze", srvCtx.HandleAnalyze)
	mux.HandleFunc("/favicon.ico", srvCtx.HandleFavicon)
	mux.HandleFunc("/", srvCtx.HandleIndex)

	handler := server.RequestLogger(mux)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("resolution", cfg.Provider.Resolution).
		Float64("threshold_deg", cfg.Analysis.SlopeThresholdDegrees).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
