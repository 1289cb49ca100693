package dem

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openterra/flatarea/internal/geo"
)

func testBBox() geo.BBox {
	return geo.BBox{MinX: 10.0, MinY: 45.0, MaxX: 11.5, MaxY: 46.0}
}

func TestClientFetch(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"demtype":      q.Get("demtype"),
			"west":         q.Get("west"),
			"east":         q.Get("east"),
			"south":        q.Get("south"),
			"north":        q.Get("north"),
			"outputFormat": q.Get("outputFormat"),
			"API_Key":      q.Get("API_Key"),
		}
		_, _ = w.Write([]byte(aaigridFixture))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), Endpoint: srv.URL, APIKey: "secret"}
	g, err := c.Fetch(testBBox(), Res30m)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if g.Rows != 2 || g.Cols != 3 {
		t.Fatalf("unexpected grid %dx%d", g.Rows, g.Cols)
	}

	want := map[string]string{
		"demtype":      "SRTMGL1",
		"west":         "10",
		"east":         "11.5",
		"south":        "45",
		"north":        "46",
		"outputFormat": "AAIGrid",
		"API_Key":      "secret",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Fatalf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestClientFetchCoverageGap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Bounding box exceeds available data", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), Endpoint: srv.URL}
	_, err := c.Fetch(testBBox(), Res90m)
	if !errors.Is(err, ErrCoverageGap) {
		t.Fatalf("expected ErrCoverageGap, got %v", err)
	}
}

func TestClientFetchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), Endpoint: srv.URL}
	_, err := c.Fetch(testBBox(), Res30m)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClientFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not a grid</html>"))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), Endpoint: srv.URL}
	_, err := c.Fetch(testBBox(), Res30m)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for malformed body, got %v", err)
	}
}

type stubSampler struct {
	fn func(coords [][]float64) ([]float64, error)
}

func (s stubSampler) Elevation4326(coords [][]float64) ([]float64, error) {
	return s.fn(coords)
}

func TestFetchLocalBuildsGrid(t *testing.T) {
	sampler := stubSampler{fn: func(coords [][]float64) ([]float64, error) {
		out := make([]float64, len(coords))
		for i := range coords {
			out[i] = 500.0
		}
		return out, nil
	}}

	bbox := geo.BBox{MinX: 10.0, MinY: 45.0, MaxX: 10.01, MaxY: 45.01}
	g, err := FetchLocal(sampler, bbox, Res30m)
	if err != nil {
		t.Fatalf("FetchLocal error: %v", err)
	}
	if g.Rows != 36 || g.Cols != 36 {
		t.Fatalf("unexpected shape %dx%d", g.Rows, g.Cols)
	}
	if g.OriginX != 10.0 || g.OriginY != 45.01 {
		t.Fatalf("unexpected origin (%g, %g)", g.OriginX, g.OriginY)
	}
	if g.At(0, 0) != 500.0 {
		t.Fatalf("unexpected sample %v", g.At(0, 0))
	}
}

func TestFetchLocalNoCoverage(t *testing.T) {
	sampler := stubSampler{fn: func(coords [][]float64) ([]float64, error) {
		out := make([]float64, len(coords))
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}}

	bbox := geo.BBox{MinX: 0, MinY: 0, MaxX: 0.001, MaxY: 0.001}
	_, err := FetchLocal(sampler, bbox, Res30m)
	if !errors.Is(err, ErrCoverageGap) {
		t.Fatalf("expected ErrCoverageGap, got %v", err)
	}
}
