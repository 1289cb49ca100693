package dem

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/openterra/flatarea/internal/geo"
	"github.com/openterra/flatarea/internal/raster"

	"github.com/rs/zerolog/log"
)

// DefaultEndpoint is the OpenTopography global DEM API.
const DefaultEndpoint = "https://portal.opentopography.org/API/globaldem"

// Client fetches elevation rasters from an OpenTopography-compatible
// endpoint.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	APIKey   string
}

// NewClient builds a client with a tuned HTTP transport. DEM responses for
// large areas take a while, hence the generous timeout.
func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		HTTP: &http.Client{
			Transport: &http.Transport{
				TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
			},
			Timeout: 120 * time.Second,
		},
		Endpoint: endpoint,
		APIKey:   apiKey,
	}
}

// Fetch downloads an elevation grid covering the bounding box at the given
// resolution. Out-of-coverage requests fail with ErrCoverageGap, transport
// and provider failures with ErrUnavailable.
func (c *Client) Fetch(bbox geo.BBox, res Resolution) (*raster.Grid, error) {
	demType, err := res.DemType()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	q := url.Values{}
	q.Set("demtype", demType)
	q.Set("west", formatCoord(bbox.MinX))
	q.Set("east", formatCoord(bbox.MaxX))
	q.Set("south", formatCoord(bbox.MinY))
	q.Set("north", formatCoord(bbox.MaxY))
	q.Set("outputFormat", "AAIGrid")
	if c.APIKey != "" {
		q.Set("API_Key", c.APIKey)
	}

	reqURL := c.Endpoint + "?" + q.Encode()

	log.Debug().
		Str("demtype", demType).
		Float64("west", bbox.MinX).
		Float64("east", bbox.MaxX).
		Float64("south", bbox.MinY).
		Float64("north", bbox.MaxY).
		Msg("Requesting DEM")

	resp, err := c.HTTP.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNoContent,
		resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusNotFound:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrCoverageGap, resp.StatusCode, bytes.TrimSpace(body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, bytes.TrimSpace(body))
	}

	grid, err := DecodeAAIGrid(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	log.Info().
		Int("rows", grid.Rows).
		Int("cols", grid.Cols).
		Float64("cell_size", grid.CellSizeX).
		Msg("DEM downloaded")

	return grid, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
