package bundle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/settings"
	"github.com/joeblew999/plat-style/internal/style"
)

func sampleDoc() style.Document {
	zoom := 11.5
	return style.Document{
		Version: 8,
		Name:    "sample",
		Sprite:  "mapbox://sprites/mapbox/streets-v12",
		Center:  []float64{-74.006, 40.7128},
		Zoom:    &zoom,
		Sources: map[string]style.Source{
			"composite": {Type: "vector", URL: "mapbox://mapbox.mapbox-streets-v8"},
			"custom-circle-1": {Type: "geojson", Data: map[string]any{
				"type": "FeatureCollection", "features": []any{},
			}},
		},
		Layers: []style.Layer{
			{ID: "background", Type: style.TypeBackground, Paint: style.Properties{"background-color": "#f8f4f0"}},
			{ID: "road-trunk", Type: style.TypeLine, Source: "composite", SourceLayer: "road",
				Paint: style.Properties{"line-color": "#ff9500", "line-width": 2.0}},
			{ID: "custom-circle-1", Type: style.TypeCircle, Source: "custom-circle-1",
				Paint: style.Properties{"circle-color": "#10b981", "circle-radius": 6.0}},
		},
		Lights: []style.Light{
			{ID: "ambient", Type: "ambient", Properties: map[string]any{"color": "#ffffff", "intensity": 0.4}},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := sampleDoc()
	s := settings.Defaults()
	s.ColorTheme = settings.ThemeNight
	s.LightPreset = settings.LightDusk
	s.Visibility["road-labels"] = false

	data, err := Encode(doc, s)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got.Style)
	assert.Equal(t, doc.LayerIDs(), got.Style.LayerIDs())
	require.NotNil(t, got.GlobalSettings)
	assert.Equal(t, s, *got.GlobalSettings)
}

func TestEncode_WireKeys(t *testing.T) {
	data, err := Encode(sampleDoc(), settings.Defaults())
	require.NoError(t, err)

	var top map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &top))
	require.Contains(t, top, "style")
	gs := top["globalSettings"]
	for _, key := range []string{"baseMapStyle", "colorTheme", "lightPreset", "visibilitySettings", "roadColors"} {
		assert.Contains(t, gs, key)
	}
}

func TestDecode_LegacyBareStyle(t *testing.T) {
	doc := sampleDoc()
	data, err := Encode(doc, settings.Defaults())
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))

	got, err := Decode(top["style"])
	require.NoError(t, err)
	assert.Nil(t, got.GlobalSettings)
	assert.Equal(t, doc, got.Style)
}

func TestDecode_PartialSettingsFillDefaults(t *testing.T) {
	raw := `{
	  "style": {"version": 8, "sources": {}, "layers": [{"id": "bg", "type": "background"}]},
	  "globalSettings": {"baseMapStyle": "mapbox://styles/mapbox/dark-v11", "roadColors": {"trunk-roads": "#000000"}}
	}`
	got, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, got.GlobalSettings)
	assert.Equal(t, "dark", got.GlobalSettings.BaseStyle)
	assert.Equal(t, settings.LightDay, got.GlobalSettings.LightPreset)
	assert.Equal(t, "#000000", got.GlobalSettings.RoadColors[settings.TrunkRoads])
	assert.Equal(t, "#1d8bff", got.GlobalSettings.RoadColors[settings.MotorwayRoads])
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":        `{"style": `,
		"array":           `[1,2,3]`,
		"null":            `null`,
		"no layers":       `{"version": 8, "sources": {}}`,
		"null style":      `{"style": null}`,
		"duplicate ids":   `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "background"}, {"id": "a", "type": "background"}]}`,
		"bad layer type":  `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "hillshade"}]}`,
		"unknown source":  `{"version": 8, "sources": {}, "layers": [{"id": "a", "type": "line", "source": "nope"}]}`,
		"bad theme":       `{"style": {"version": 8, "sources": {}, "layers": []}, "globalSettings": {"colorTheme": "sepia"}}`,
		"bad base style":  `{"style": {"version": 8, "sources": {}, "layers": []}, "globalSettings": {"baseMapStyle": "terrain"}}`,
		"bad road color":  `{"style": {"version": 8, "sources": {}, "layers": []}, "globalSettings": {"roadColors": {"other-roads": "red"}}}`,
		"style is string": `{"style": "mapbox://styles/mapbox/streets-v12"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			require.Error(t, err)
			assert.Equal(t, style.KindInvalidDocument, style.KindOf(err), "got %v", err)
		})
	}
}

func TestCheckExtension(t *testing.T) {
	assert.NoError(t, CheckExtension("mapfi-style.mfc"))
	assert.NoError(t, CheckExtension("Export.JSON"))
	assert.ErrorIs(t, CheckExtension("style.geojson"), style.ErrInvalidDocument)
	assert.ErrorIs(t, CheckExtension("style"), style.ErrInvalidDocument)
}

func TestEncodeDocument(t *testing.T) {
	data, err := EncodeDocument(sampleDoc())
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Nil(t, got.GlobalSettings)
	assert.Equal(t, sampleDoc(), got.Style)
}
