package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/style"
)

func testDoc() *style.Document {
	return &style.Document{
		Version: 8,
		Sprite:  "mapbox://sprites/mapbox/dark-v11",
		Sources: map[string]style.Source{"composite": {Type: "vector"}},
		Layers: []style.Layer{
			{ID: "road-trunk-case", Type: style.TypeLine, Source: "composite", Paint: style.Properties{"line-color": "#999999"}},
			{ID: "road-trunk", Type: style.TypeLine, Source: "composite", Paint: style.Properties{"line-color": "#123456"}},
			{ID: "road-street", Type: style.TypeLine, Source: "composite", Paint: style.Properties{"line-color": "#eeeeee"}},
			{ID: "poi-label", Type: style.TypeSymbol, Source: "composite", Layout: style.Properties{"visibility": "none"}},
			{ID: "settlement-label", Type: style.TypeSymbol, Source: "composite"},
		},
	}
}

func TestAdjustBrightness(t *testing.T) {
	tests := []struct {
		in     string
		factor float64
		want   string
	}{
		{"#ff9500", -0.3, "#b34900"},
		{"#1d8bff", -0.3, "#003fb3"},
		{"#000000", 0.1, "#1a1a1a"},
		{"#ffffff", 0.5, "#ffffff"},
		{"#808080", 0, "#808080"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := AdjustBrightness(tt.in, tt.factor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"ff9500", "#ff95", "#gg9500", ""} {
		_, err := AdjustBrightness(bad, -0.3)
		assert.ErrorIs(t, err, style.ErrInvalidSetting, bad)
	}
}

func TestLightsFor(t *testing.T) {
	lights, legacy, err := LightsFor(LightNight)
	require.NoError(t, err)
	require.Len(t, lights, 2)
	assert.Equal(t, "ambient", lights[0].ID)
	assert.Equal(t, "#223344", lights[0].Properties["color"])
	assert.Equal(t, 0.2, lights[0].Properties["intensity"])
	assert.Equal(t, []any{200.0, 60.0}, lights[1].Properties["direction"])
	assert.Equal(t, 0.7, lights[1].Properties["shadow-intensity"])
	assert.Equal(t, "viewport", legacy.Anchor)
	assert.Equal(t, "#223344", legacy.Color)

	dawn, _, err := LightsFor(LightDawn)
	require.NoError(t, err)
	assert.Equal(t, 0.4, dawn[0].Properties["intensity"])
	assert.Equal(t, "#ffd580", dawn[1].Properties["color"])

	dusk, _, err := LightsFor(LightDusk)
	require.NoError(t, err)
	assert.Equal(t, dawn[0], dusk[0])
	assert.Equal(t, []any{300.0, 30.0}, dusk[1].Properties["direction"])

	_, _, err = LightsFor("noon")
	assert.ErrorIs(t, err, style.ErrInvalidSetting)
}

func TestVisibilityPatches_SkipsMissingLayers(t *testing.T) {
	patches, err := VisibilityPatches(testDoc(), "place-labels", false)
	require.NoError(t, err)
	assert.Equal(t, []style.Patch{
		{LayerID: "settlement-label", Namespace: style.Layout, Name: "visibility", Value: "none"},
	}, patches)

	patches, err = VisibilityPatches(testDoc(), "transit-labels", true)
	require.NoError(t, err)
	assert.Empty(t, patches)

	_, err = VisibilityPatches(testDoc(), "buildings", true)
	assert.ErrorIs(t, err, style.ErrInvalidSetting)
}

func TestRoadColorPatches_DarkensCaseLayers(t *testing.T) {
	patches, err := RoadColorPatches(testDoc(), TrunkRoads, "#ff9500")
	require.NoError(t, err)
	assert.Equal(t, []style.Patch{
		{LayerID: "road-trunk", Namespace: style.Paint, Name: "line-color", Value: "#ff9500"},
		{LayerID: "road-trunk-case", Namespace: style.Paint, Name: "line-color", Value: "#b34900"},
	}, patches)

	_, err = RoadColorPatches(testDoc(), TrunkRoads, "orange")
	assert.ErrorIs(t, err, style.ErrInvalidSetting)
}

func TestThemePatches(t *testing.T) {
	patches, err := ThemePatches(testDoc(), ThemeMonochrome)
	require.NoError(t, err)
	require.Len(t, patches, 3)
	assert.Equal(t, "#555555", patches[0].Value)
	assert.Equal(t, "road-street", patches[2].LayerID)
	assert.Equal(t, "#777777", patches[2].Value)

	_, err = ThemePatches(testDoc(), "sepia")
	assert.ErrorIs(t, err, style.ErrInvalidSetting)
}

func TestDerive(t *testing.T) {
	got := Derive(testDoc(), Defaults())

	assert.Equal(t, "dark", got.BaseStyle)
	assert.False(t, got.Visibility["poi-labels"])
	assert.False(t, got.Visibility["landmark-icons"])
	assert.True(t, got.Visibility["place-labels"])
	assert.True(t, got.Visibility["3d-models"], "absent layers read as visible")

	assert.Equal(t, "#123456", got.RoadColors[TrunkRoads])
	assert.Equal(t, "#eeeeee", got.RoadColors[OtherRoads])
	assert.Equal(t, "#1d8bff", got.RoadColors[MotorwayRoads], "absent group keeps prior")
	assert.Equal(t, ThemeDefault, got.ColorTheme, "unmatched palette keeps selection")
	assert.Equal(t, LightDay, got.LightPreset)
}

func TestDerive_MatchesThemeAndLights(t *testing.T) {
	doc := testDoc()
	patches, err := ThemePatches(doc, ThemeNight)
	require.NoError(t, err)
	for _, p := range patches {
		l, _ := doc.Layer(p.LayerID)
		l.Paint[p.Name] = p.Value
	}
	doc.Lights, _, err = LightsFor(LightDusk)
	require.NoError(t, err)

	prior := Defaults()
	prior.RoadColors[MotorwayRoads] = Themes[ThemeNight][MotorwayRoads]
	got := Derive(doc, prior)
	assert.Equal(t, ThemeNight, got.ColorTheme)
	assert.Equal(t, LightDusk, got.LightPreset)
}

func TestDerive_UnknownSpriteKeepsSelection(t *testing.T) {
	doc := testDoc()
	doc.Sprite = "https://example.com/sprite"
	prior := Defaults()
	prior.BaseStyle = "outdoors"

	assert.Equal(t, "outdoors", Derive(doc, prior).BaseStyle)
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())

	s := Defaults()
	s.ColorTheme = "sepia"
	assert.ErrorIs(t, s.Validate(), style.ErrInvalidSetting)

	s = Defaults()
	s.RoadColors[OtherRoads] = "white"
	assert.ErrorIs(t, s.Validate(), style.ErrInvalidSetting)

	s = Defaults()
	s.Visibility["buildings"] = true
	assert.ErrorIs(t, s.Validate(), style.ErrInvalidSetting)
}

func TestResolveBaseStyle(t *testing.T) {
	b, err := ResolveBaseStyle("satellite-streets")
	require.NoError(t, err)
	assert.Equal(t, "mapbox://styles/mapbox/satellite-streets-v12", b.URL)

	b, err = ResolveBaseStyle("mapbox://styles/mapbox/light-v11")
	require.NoError(t, err)
	assert.Equal(t, "light", b.Name)

	_, err = ResolveBaseStyle("terrain")
	assert.ErrorIs(t, err, style.ErrInvalidSetting)

	assert.Equal(t, "mapbox://styles/mapbox/streets-v12", StyleURLFromSprite("mapbox://sprites/mapbox/streets-v12"))
}
