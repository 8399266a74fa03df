package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/style"
)

func TestFromCSV(t *testing.T) {
	in := "name,lat,lng\n\"A\",40,-74.5\n\"B\",north,-73\n"
	fc, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, orb.Point{-74.5, 40}, f.Geometry)
	assert.Equal(t, "A", f.Properties["name"])
	assert.NotContains(t, f.Properties, "lat")
	assert.NotContains(t, f.Properties, "lng")
}

func TestFromCSV_HeaderMatching(t *testing.T) {
	in := "Station, Latitude ,LONGITUDE,kind\nx, 51.5 ,-0.12,rail\ny,52,,bus\nz,53,1\n"
	fc, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, orb.Point{-0.12, 51.5}, fc.Features[0].Geometry)
	assert.Equal(t, "rail", fc.Features[0].Properties["kind"])
	assert.Equal(t, orb.Point{1, 53}, fc.Features[1].Geometry)
	assert.NotContains(t, fc.Features[1].Properties, "kind")
}

func TestFromCSV_DropsNonFinite(t *testing.T) {
	in := "lat,lon\nNaN,1\n2,Inf\n3,4\n"
	fc, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.Point{4, 3}, fc.Features[0].Geometry)
}

func TestFromCSV_MissingColumns(t *testing.T) {
	for _, in := range []string{"name,lat\nA,1\n", "name,x,y\nA,1,2\n", ""} {
		_, err := FromCSV(strings.NewReader(in))
		assert.ErrorIs(t, err, style.ErrMissingCoordinateColumns, "input %q", in)
	}
}

func TestPlan_GeometryFamilies(t *testing.T) {
	tests := []struct {
		name  string
		geom  string
		typ   style.LayerType
		paint style.Properties
	}{
		{"point", `{"type":"Point","coordinates":[1,2]}`, style.TypeCircle,
			style.Properties{"circle-radius": 6.0, "circle-color": "#3b82f6", "circle-opacity": 0.8}},
		{"multipoint", `{"type":"MultiPoint","coordinates":[[1,2]]}`, style.TypeCircle, nil},
		{"line", `{"type":"LineString","coordinates":[[1,2],[3,4]]}`, style.TypeLine,
			style.Properties{"line-color": "#ef4444", "line-width": 2.0}},
		{"multiline", `{"type":"MultiLineString","coordinates":[[[1,2],[3,4]]]}`, style.TypeLine, nil},
		{"polygon", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, style.TypeFill,
			style.Properties{"fill-color": "#10b981", "fill-opacity": 0.6}},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}`, style.TypeFill, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":` + tt.geom + `}]}`
			fc, err := ParseGeoJSON([]byte(data))
			require.NoError(t, err)

			src, layer, err := Plan(fc, "geojson-1")
			require.NoError(t, err)
			assert.Equal(t, "geojson", src.Type)
			assert.Equal(t, "geojson-1", layer.ID)
			assert.Equal(t, "geojson-1", layer.Source)
			assert.Equal(t, tt.typ, layer.Type)
			if tt.paint != nil {
				assert.Equal(t, tt.paint, layer.Paint)
			}
			data2, ok := src.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "FeatureCollection", data2["type"])
		})
	}
}

func TestPlan_MixedUsesFirstFeature(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]}},
	  {"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}]}`
	fc, err := ParseGeoJSON([]byte(data))
	require.NoError(t, err)
	_, layer, err := Plan(fc, "x")
	require.NoError(t, err)
	assert.Equal(t, style.TypeLine, layer.Type)
}

func TestPlan_RejectsEmpty(t *testing.T) {
	fc, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	_, _, err = Plan(fc, "x")
	assert.ErrorIs(t, err, style.ErrInvalidDocument)
}

func TestParseGeoJSON_Rejects(t *testing.T) {
	for _, in := range []string{`not json`, `{"type":"Feature","geometry":null}`, `[]`} {
		_, err := ParseGeoJSON([]byte(in))
		assert.ErrorIs(t, err, style.ErrInvalidDocument, in)
	}
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	assert.Equal(t, "url-1700000000000", NewID(PrefixURL, now, nil))

	taken := map[string]bool{"csv-1700000000000": true, "csv-1700000000000-2": true}
	id := NewID(PrefixCSV, now, func(s string) bool { return taken[s] })
	assert.Equal(t, "csv-1700000000000-3", id)
}

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.geojson":
			w.Header().Set("Content-Type", "application/geo+json")
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
		case "/html":
			_, _ = w.Write([]byte(`<html></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	ctx := context.Background()

	body, err := f.FetchJSON(ctx, srv.URL+"/ok.geojson")
	require.NoError(t, err)
	assert.Contains(t, string(body), "FeatureCollection")

	for _, path := range []string{"/html", "/missing"} {
		_, err := f.FetchJSON(ctx, srv.URL+path)
		assert.ErrorIs(t, err, style.ErrFetchFailure, path)
	}
	_, err = f.FetchJSON(ctx, "ftp://example.com/x")
	assert.ErrorIs(t, err, style.ErrFetchFailure)

	f.MaxBytes = 8
	_, err = f.FetchJSON(ctx, srv.URL+"/ok.geojson")
	assert.ErrorIs(t, err, style.ErrFetchFailure)
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir)

	files, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, os.MkdirAll(c.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "stations.csv"), []byte("name,lat,lng\nA,1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "areas.geojson"), make([]byte, 2048), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "notes.txt"), []byte("x"), 0o644))

	files, err = c.List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, SourceFile{Name: "areas.geojson", Size: "2.0 KB", FileType: FormatGeoJSON}, files[0])
	assert.Equal(t, FormatCSV, files[1].FileType)

	data, format, err := c.Open("stations.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)
	assert.Contains(t, string(data), "name,lat,lng")

	for _, bad := range []string{"../stations.csv", "notes.txt", "missing.csv", ""} {
		_, _, err := c.Open(bad)
		assert.ErrorIs(t, err, style.ErrInvalidDocument, bad)
	}
}

func TestSample(t *testing.T) {
	fc, prefix, err := Sample(SamplePoints)
	require.NoError(t, err)
	assert.Equal(t, PrefixSample, prefix)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.Point{-74.5, 40}, fc.Features[0].Geometry)

	fc, prefix, err = Sample(SampleLine)
	require.NoError(t, err)
	assert.Equal(t, "sample-line", prefix)
	_, layer, err := Plan(fc, NewID(prefix, time.UnixMilli(1700000000000), nil))
	require.NoError(t, err)
	assert.Equal(t, style.TypeLine, layer.Type)
	assert.True(t, style.IsUserLayer(layer.ID))

	_, _, err = Sample("polygon")
	assert.ErrorIs(t, err, style.ErrInvalidDocument)
}
