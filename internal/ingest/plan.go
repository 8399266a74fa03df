package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-style/internal/style"
)

// ID prefixes for ingested layers, one per entry point.
const (
	PrefixFile    = "imported"
	PrefixGeoJSON = "geojson"
	PrefixCSV     = "csv"
	PrefixURL     = "url"
	PrefixSample  = "sample"
)

// ParseGeoJSON decodes a FeatureCollection. Anything else is
// KindInvalidDocument.
func ParseGeoJSON(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, style.Wrap(style.KindInvalidDocument, "geojson", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, style.Errorf(style.KindInvalidDocument, "geojson", "expected a FeatureCollection, got %q", fc.Type)
	}
	return fc, nil
}

// Plan builds the source and layer for fc under id. The layer type and paint
// follow the first feature's geometry; later features of another family
// render with the same layer type.
func Plan(fc *geojson.FeatureCollection, id string) (style.Source, style.Layer, error) {
	if fc == nil || len(fc.Features) == 0 {
		return style.Source{}, style.Layer{}, style.Errorf(style.KindInvalidDocument, "plan layer", "feature collection has no features")
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		return style.Source{}, style.Layer{}, style.Wrap(style.KindInvalidDocument, "plan layer", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return style.Source{}, style.Layer{}, style.Wrap(style.KindInvalidDocument, "plan layer", err)
	}

	layerType, paint := paintFor(fc.Features[0].Geometry)
	src := style.Source{Type: "geojson", Data: data}
	layer := style.Layer{
		ID:     id,
		Type:   layerType,
		Source: id,
		Paint:  paint,
	}
	return src, layer, nil
}

func paintFor(g orb.Geometry) (style.LayerType, style.Properties) {
	switch g.(type) {
	case orb.LineString, orb.MultiLineString:
		return style.TypeLine, style.Properties{"line-color": "#ef4444", "line-width": 2.0}
	case orb.Polygon, orb.MultiPolygon:
		return style.TypeFill, style.Properties{"fill-color": "#10b981", "fill-opacity": 0.6}
	default:
		// Points, collections and unknown geometries render as circles.
		return style.TypeCircle, style.Properties{"circle-radius": 6.0, "circle-color": "#3b82f6", "circle-opacity": 0.8}
	}
}

// NewID returns "<prefix>-<unix ms>", suffixed with a counter when exists
// reports a clash.
func NewID(prefix string, now time.Time, exists func(string) bool) string {
	base := fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
	id := base
	for n := 2; exists != nil && exists(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}
