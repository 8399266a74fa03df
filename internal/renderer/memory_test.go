package renderer

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/style"
)

func baseDoc() style.Document {
	zoom := 4.0
	return style.Document{
		Version: 8,
		Name:    "test",
		Center:  []float64{-74, 40.7},
		Zoom:    &zoom,
		Sources: map[string]style.Source{
			"composite": {Type: "vector", URL: "mapbox://mapbox.mapbox-streets-v8"},
		},
		Layers: []style.Layer{
			{ID: "background", Type: style.TypeBackground, Paint: style.Properties{"background-color": "#ffffff"}},
			{ID: "road-street", Type: style.TypeLine, Source: "composite", SourceLayer: "road",
				Paint: style.Properties{"line-color": "#ffffff", "line-width": 1.5}},
		},
	}
}

func newLoaded(t *testing.T, opts ...Option) *Memory {
	t.Helper()
	m := NewMemory(opts...)
	require.NoError(t, m.ReplaceDocument(baseDoc()))
	return m
}

func TestMemory_ReplaceAppliesCameraAndNotifies(t *testing.T) {
	m := NewMemory()
	loads := 0
	cancel := m.OnDocumentLoaded(func() { loads++ })

	require.NoError(t, m.ReplaceDocument(baseDoc()))
	assert.Equal(t, 1, loads)
	assert.Equal(t, orb.Point{-74, 40.7}, m.Viewport().Center)
	assert.Equal(t, 4.0, m.Viewport().Zoom)

	cancel()
	require.NoError(t, m.ReplaceDocument(baseDoc()))
	assert.Equal(t, 1, loads)
}

func TestMemory_DeferredLoadFiresOnFlush(t *testing.T) {
	m := NewMemory(WithDeferredLoad())
	loads := 0
	m.OnDocumentLoaded(func() { loads++ })

	require.NoError(t, m.ReplaceDocument(baseDoc()))
	assert.Equal(t, 0, loads)
	assert.Equal(t, 1, m.Flush())
	assert.Equal(t, 1, loads)
	assert.Equal(t, 0, m.Flush())
}

func TestMemory_ReplaceRejectsInvalidDocument(t *testing.T) {
	m := newLoaded(t)
	bad := baseDoc()
	bad.Layers[1].Source = "missing"

	err := m.ReplaceDocument(bad)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Equal(t, "composite", m.Document().Layers[1].Source)
}

func TestMemory_ReplaceRegistersInlineSources(t *testing.T) {
	m := NewMemory()
	doc := baseDoc()
	doc.Layers = append(doc.Layers, style.Layer{
		ID: "custom-fill-1", Type: style.TypeFill,
		InlineSource: &style.Source{Type: "geojson", Data: map[string]any{"type": "FeatureCollection", "features": []any{}}},
	})
	require.NoError(t, m.ReplaceDocument(doc))

	got := m.Document()
	assert.Contains(t, got.Sources, "custom-fill-1")
	l, ok := got.Layer("custom-fill-1")
	require.True(t, ok)
	assert.Equal(t, "custom-fill-1", l.Source)
	assert.Nil(t, l.InlineSource)
}

func TestMemory_SetLayerProperty(t *testing.T) {
	tests := []struct {
		name    string
		layer   string
		ns      style.Namespace
		prop    string
		value   any
		want    any
		wantErr error
	}{
		{name: "color", layer: "road-street", ns: style.Paint, prop: "line-color", value: "#ff0000", want: "#ff0000"},
		{name: "int normalized", layer: "road-street", ns: style.Paint, prop: "line-width", value: 3, want: 3.0},
		{name: "negative width clamped", layer: "road-street", ns: style.Paint, prop: "line-width", value: -2.0, want: 0.0},
		{name: "opacity clamped", layer: "road-street", ns: style.Paint, prop: "line-opacity", value: 1.7, want: 1.0},
		{name: "expression passes", layer: "road-street", ns: style.Paint, prop: "line-width",
			value: []any{"interpolate", []any{"linear"}, []any{"zoom"}, 5, 1, 15, 4},
			want:  []any{"interpolate", []any{"linear"}, []any{"zoom"}, 5.0, 1.0, 15.0, 4.0}},
		{name: "visibility", layer: "road-street", ns: style.Layout, prop: "visibility", value: "none", want: "none"},
		{name: "bad visibility", layer: "road-street", ns: style.Layout, prop: "visibility", value: "hidden", wantErr: ErrInvalidValue},
		{name: "color must be string", layer: "road-street", ns: style.Paint, prop: "line-color", value: 12.0, wantErr: ErrInvalidValue},
		{name: "unknown layer", layer: "nope", ns: style.Paint, prop: "line-color", value: "#000", wantErr: ErrLayerNotFound},
		{name: "wrong type property", layer: "road-street", ns: style.Paint, prop: "fill-color", value: "#000", wantErr: ErrInvalidProperty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLoaded(t)
			before := m.Document()

			err := m.SetLayerProperty(tt.layer, tt.ns, tt.prop, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, m.Document())
				return
			}
			require.NoError(t, err)
			got, err := m.LayerProperty(tt.layer, tt.ns, tt.prop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemory_SetLayerPropertyNilResets(t *testing.T) {
	m := newLoaded(t)
	require.NoError(t, m.SetLayerProperty("road-street", style.Paint, "line-width", nil))

	got, err := m.LayerProperty("road-street", style.Paint, "line-width")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_LayerAndSourceLifecycle(t *testing.T) {
	m := newLoaded(t)

	layer := style.Layer{
		ID: "custom-circle-1", Type: style.TypeCircle,
		InlineSource: &style.Source{Type: "geojson", Data: map[string]any{"type": "FeatureCollection", "features": []any{}}},
		Paint:        style.DefaultPaint(style.TypeCircle),
	}
	require.NoError(t, m.AddLayer(layer))
	assert.True(t, m.LayerExists("custom-circle-1"))
	assert.ErrorIs(t, m.AddLayer(layer), ErrDuplicateLayer)

	ids := m.Document().LayerIDs()
	assert.Equal(t, "custom-circle-1", ids[len(ids)-1])

	assert.ErrorIs(t, m.RemoveSource("custom-circle-1"), ErrSourceInUse)
	require.NoError(t, m.RemoveLayer("custom-circle-1"))
	require.NoError(t, m.RemoveSource("custom-circle-1"))
	assert.ErrorIs(t, m.RemoveLayer("custom-circle-1"), ErrLayerNotFound)
	assert.ErrorIs(t, m.RemoveSource("custom-circle-1"), ErrSourceNotFound)

	require.NoError(t, m.AddSource("points", style.Source{Type: "geojson"}))
	assert.ErrorIs(t, m.AddSource("points", style.Source{Type: "geojson"}), ErrDuplicateSource)
	assert.ErrorIs(t, m.AddLayer(style.Layer{ID: "x", Type: style.TypeCircle, Source: "missing"}), ErrSourceNotFound)
	assert.ErrorIs(t, m.AddLayer(style.Layer{ID: "y", Type: style.TypeCircle, Source: "points",
		Paint: style.Properties{"fill-color": "#000"}}), ErrInvalidProperty)
}

func TestMemory_Lights(t *testing.T) {
	m := newLoaded(t)
	lights := []style.Light{
		{ID: "ambient", Type: "ambient", Properties: map[string]any{"color": "#ffffff", "intensity": 0.5}},
	}
	require.NoError(t, m.SetLights(lights))
	assert.Equal(t, lights, m.Document().Lights)

	single := newLoaded(t, WithoutMultiLight())
	assert.False(t, single.Capabilities().MultiLight)
	assert.ErrorIs(t, single.SetLights(lights), ErrUnsupported)

	intensity := 0.5
	require.NoError(t, single.SetSingleLight(style.LegacyLight{Anchor: "viewport", Color: "#ffffff", Intensity: &intensity}))
	got := single.Document().Light
	require.NotNil(t, got)
	assert.Equal(t, "viewport", got.Anchor)
	assert.Equal(t, 0.5, *got.Intensity)
}

func TestMemory_DocumentIsACopy(t *testing.T) {
	m := newLoaded(t)
	doc := m.Document()
	doc.Layers[1].Paint["line-color"] = "#000000"

	got, err := m.LayerProperty("road-street", style.Paint, "line-color")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", got)
}
