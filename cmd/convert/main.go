package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/openterra/flatarea/internal/geo"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in" description:"Input boundary file (KML or GeoJSON). Reads from stdin if empty"`
	Output string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"geojson" choice:"kml" choice:"yaml" default:"geojson"`
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

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	boundary, err := geo.ParseBoundary(inputData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing boundary: %v\n", err)
		os.Exit(1)
	}

	// marshal
	var outputData []byte
	switch opts.Format {
	case "kml":
		outputData, err = geo.WriteKML([]geo.Polygon{*boundary}, "boundary")
	case "yaml":
		fc := geo.MarshalPolygons([]geo.Polygon{*boundary})
		outputData, err = yaml.Marshal(fc)
	default:
		fc := geo.MarshalPolygons([]geo.Polygon{*boundary})
		outputData, err = json.MarshalIndent(fc, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Boundary written to %s (format: %s)\n", opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
