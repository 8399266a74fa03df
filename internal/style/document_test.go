package style

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "version": 8,
  "name": "sample",
  "sprite": "mapbox://sprites/mapbox/streets-v12",
  "sources": {
    "composite": {"type": "vector", "url": "mapbox://mapbox.mapbox-streets-v8"}
  },
  "layers": [
    {"id": "background", "type": "background", "paint": {"background-color": "#f8f4f0"}},
    {"id": "road-street", "type": "line", "source": "composite", "source-layer": "road",
     "paint": {"line-color": "#ffffff", "line-width": 1.5}},
    {"id": "custom-fill-1", "type": "fill",
     "source": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}},
     "paint": {"fill-color": "#3b82f6", "fill-opacity": 0.6}}
  ]
}`

func decodeSample(t *testing.T) Document {
	t.Helper()
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(sampleDoc), &doc))
	return doc
}

func TestLayer_SourceDecodesStringAndInline(t *testing.T) {
	doc := decodeSample(t)

	street, ok := doc.Layer("road-street")
	require.True(t, ok)
	assert.Equal(t, "composite", street.Source)
	assert.Nil(t, street.InlineSource)

	custom, ok := doc.Layer("custom-fill-1")
	require.True(t, ok)
	assert.Empty(t, custom.Source)
	require.NotNil(t, custom.InlineSource)
	assert.Equal(t, "geojson", custom.InlineSource.Type)

	bg, _ := doc.Layer("background")
	assert.Empty(t, bg.Source)
	assert.Nil(t, bg.InlineSource)
}

func TestDocument_JSONRoundTripPreservesOrderAndProperties(t *testing.T) {
	doc := decodeSample(t)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var again Document
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, doc, again)
	assert.Equal(t, []string{"background", "road-street", "custom-fill-1"}, again.LayerIDs())
}

func TestDocument_UnmodeledKeysRoundTrip(t *testing.T) {
	raw := `{"version": 8, "sources": {}, "layers": [],
		"fog": {"range": [0.5, 10], "color": "#ffffff"},
		"terrain": {"source": "dem", "exaggeration": 1.5},
		"projection": {"name": "globe"},
		"imports": [{"id": "basemap", "url": "mapbox://styles/mapbox/standard"}],
		"transition": {"duration": 300}}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Len(t, doc.Extra, 5)
	assert.NotContains(t, doc.Extra, "layers")

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	for _, key := range []string{"fog", "terrain", "projection", "imports", "transition", "layers"} {
		assert.Contains(t, generic, key)
	}
	assert.Equal(t, 1.5, generic["terrain"].(map[string]any)["exaggeration"])

	var again Document
	require.NoError(t, json.Unmarshal(out, &again))
	assert.JSONEq(t, string(doc.Extra["fog"]), string(again.Extra["fog"]))

	cp := doc.Clone()
	cp.Extra["fog"][0] = '['
	assert.Equal(t, byte('{'), doc.Extra["fog"][0])

	doc.Extra["bad"] = json.RawMessage("{")
	_, err = json.Marshal(doc)
	assert.Error(t, err)
}

func TestDocument_LayerLookupOnReturnedValue(t *testing.T) {
	current := func() Document { return decodeSample(t) }

	assert.True(t, current().HasLayer("road-street"))
	assert.Equal(t, []string{"background", "road-street", "custom-fill-1"}, current().LayerIDs())
	_, ok := current().Layer("missing")
	assert.False(t, ok)

	doc := current()
	l, ok := doc.Layer("road-street")
	require.True(t, ok)
	l.Paint["line-color"] = "#000000"
	assert.Equal(t, "#000000", doc.Layers[1].Paint["line-color"])
}

func TestDocument_CloneDoesNotAlias(t *testing.T) {
	doc := decodeSample(t)
	cp := doc.Clone()

	street, _ := cp.Layer("road-street")
	street.Paint["line-color"] = "#000000"
	cp.Sources["composite"] = Source{Type: "raster"}
	custom, _ := cp.Layer("custom-fill-1")
	custom.InlineSource.Data.(map[string]any)["type"] = "Feature"

	orig, _ := doc.Layer("road-street")
	assert.Equal(t, "#ffffff", orig.Paint["line-color"])
	assert.Equal(t, "vector", doc.Sources["composite"].Type)
	origCustom, _ := doc.Layer("custom-fill-1")
	assert.Equal(t, "FeatureCollection", origCustom.InlineSource.Data.(map[string]any)["type"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		ok     bool
	}{
		{name: "valid", mutate: func(d *Document) {}, ok: true},
		{name: "duplicate id", mutate: func(d *Document) {
			d.Layers = append(d.Layers, d.Layers[0].Clone())
		}},
		{name: "unknown source", mutate: func(d *Document) {
			d.Layers[1].Source = "missing"
		}},
		{name: "bad layer type", mutate: func(d *Document) {
			d.Layers[0].Type = "hillshade"
		}},
		{name: "missing id", mutate: func(d *Document) {
			d.Layers[0].ID = ""
		}},
		{name: "property not valid for type", mutate: func(d *Document) {
			d.Layers[1].Paint["fill-color"] = "#000000"
		}},
		{name: "source without type", mutate: func(d *Document) {
			d.Sources["extra"] = Source{URL: "x"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeSample(t)
			tt.mutate(&doc)
			err := Validate(&doc)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument), "got %v", err)
		})
	}
}

func TestCheckProperty(t *testing.T) {
	assert.NoError(t, CheckProperty(TypeFill, Paint, "fill-color"))
	assert.NoError(t, CheckProperty(TypeSymbol, Layout, "text-field"))
	assert.NoError(t, CheckProperty(TypeRaster, Layout, "visibility"))
	for _, name := range []string{"text-letter-spacing", "text-line-height", "text-justify",
		"text-padding", "text-rotation-alignment", "icon-text-fit", "symbol-avoid-edges",
		"text-variable-anchor"} {
		assert.NoError(t, CheckProperty(TypeSymbol, Layout, name), name)
	}
	assert.NoError(t, CheckProperty(TypeBackground, Paint, "background-emissive-strength"))

	err := CheckProperty(TypeLine, Paint, "fill-color")
	assert.ErrorIs(t, err, ErrInvalidProperty)
	assert.Equal(t, KindInvalidProperty, KindOf(err))

	assert.ErrorIs(t, CheckProperty(TypeCircle, Layout, "circle-radius"), ErrInvalidProperty)
	assert.ErrorIs(t, CheckProperty("hillshade", Paint, "x"), ErrInvalidProperty)
}

func TestAllowedProperties_Sorted(t *testing.T) {
	names := AllowedProperties(TypeBackground, Paint)
	assert.Equal(t, []string{"background-color", "background-emissive-strength", "background-opacity", "background-pattern"}, names)
}

func TestIsUserLayer(t *testing.T) {
	assert.True(t, IsUserLayer("custom-fill-123"))
	assert.True(t, IsUserLayer("imported-1700000000000"))
	assert.True(t, IsUserLayer("url-1"))
	assert.True(t, IsUserLayer("sample-line-1700000000000"))
	assert.False(t, IsUserLayer("road-street"))
	assert.False(t, IsUserLayer("poi-label"))
}

func TestError_KindMatching(t *testing.T) {
	err := Errorf(KindUnknownLayer, "apply property", "layer %q", "x")
	assert.ErrorIs(t, err, ErrUnknownLayer)
	assert.NotErrorIs(t, err, ErrInvalidProperty)
	assert.Contains(t, err.Error(), "UnknownLayer")
	assert.Nil(t, Wrap(KindFetchFailure, "fetch", nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
