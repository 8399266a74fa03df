// Package settings translates between a raw style document and the small set
// of named settings the editor exposes: base style, color theme, light
// preset, per-category visibility and road-color groups.
//
// Derivation reads the document through well-known base-style layer ids.
// Synthesis turns one named choice into the property patches or lights that
// realize it. Nothing here touches a renderer.
package settings

import (
	"strings"

	"github.com/joeblew999/plat-style/internal/style"
)

// BaseStyle is a named base map and the style URL it loads.
type BaseStyle struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// BaseStyles lists the selectable base maps in display order.
var BaseStyles = []BaseStyle{
	{Name: "standard", URL: "mapbox://styles/mapbox/standard"},
	{Name: "streets", URL: "mapbox://styles/mapbox/streets-v12"},
	{Name: "outdoors", URL: "mapbox://styles/mapbox/outdoors-v12"},
	{Name: "light", URL: "mapbox://styles/mapbox/light-v11"},
	{Name: "dark", URL: "mapbox://styles/mapbox/dark-v11"},
	{Name: "satellite", URL: "mapbox://styles/mapbox/satellite-v9"},
	{Name: "satellite-streets", URL: "mapbox://styles/mapbox/satellite-streets-v12"},
}

// ResolveBaseStyle accepts a base style name or its style URL and returns
// the table entry.
func ResolveBaseStyle(nameOrURL string) (BaseStyle, error) {
	for _, b := range BaseStyles {
		if b.Name == nameOrURL || b.URL == nameOrURL {
			return b, nil
		}
	}
	return BaseStyle{}, style.Errorf(style.KindInvalidSetting, "resolve base style", "unknown base style %q", nameOrURL)
}

// StyleURLFromSprite maps a sprite URL onto the style URL it was published
// with ("mapbox://sprites/mapbox/streets-v12" → "mapbox://styles/mapbox/streets-v12").
func StyleURLFromSprite(sprite string) string {
	return strings.Replace(sprite, "sprite", "style", 1)
}

// Category is a named visibility toggle over a set of base-style layers.
type Category struct {
	Name     string   `json:"name" yaml:"name"`
	LayerIDs []string `json:"layerIds" yaml:"layerIds"`
}

// Categories lists the visibility toggles.
var Categories = []Category{
	{Name: "landmark-icons", LayerIDs: []string{"poi-label"}},
	{Name: "3d-models", LayerIDs: []string{"building-extrusion"}},
	{Name: "place-labels", LayerIDs: []string{"settlement-label", "state-label", "country-label"}},
	{Name: "poi-labels", LayerIDs: []string{"poi-label"}},
	{Name: "transit-labels", LayerIDs: []string{"transit-label"}},
	{Name: "pedestrian-paths", LayerIDs: []string{"road-pedestrian", "road-path", "road-steps"}},
	{Name: "road-labels", LayerIDs: []string{"road-label"}},
}

// RoadGroup is a named road color applied to a set of line layers.
type RoadGroup struct {
	Name     string   `json:"name" yaml:"name"`
	LayerIDs []string `json:"layerIds" yaml:"layerIds"`
	Default  string   `json:"default" yaml:"default"`
}

// Road group names.
const (
	TrunkRoads    = "trunk-roads"
	MotorwayRoads = "motorway-roads"
	OtherRoads    = "other-roads"
)

// RoadGroups lists the road-color groups.
var RoadGroups = []RoadGroup{
	{Name: TrunkRoads, LayerIDs: []string{"road-trunk", "road-trunk-case"}, Default: "#ff9500"},
	{Name: MotorwayRoads, LayerIDs: []string{"road-motorway", "road-motorway-case"}, Default: "#1d8bff"},
	{Name: OtherRoads, LayerIDs: []string{"road-street", "road-minor", "road-primary", "road-secondary"}, Default: "#ffffff"},
}

// caseMarker identifies outline layers, which get a darkened color.
const caseMarker = "-case"

// CaseDarkening is the brightness factor applied to outline layers.
const CaseDarkening = -0.3

// ColorTheme names a fixed road palette.
type ColorTheme string

const (
	ThemeDefault    ColorTheme = "default"
	ThemeMonochrome ColorTheme = "monochrome"
	ThemeNight      ColorTheme = "night"
)

// Themes maps each theme to its trunk, motorway and other road colors.
var Themes = map[ColorTheme]map[string]string{
	ThemeDefault:    {TrunkRoads: "#ff9500", MotorwayRoads: "#1d8bff", OtherRoads: "#ffffff"},
	ThemeMonochrome: {TrunkRoads: "#555555", MotorwayRoads: "#333333", OtherRoads: "#777777"},
	ThemeNight:      {TrunkRoads: "#3b4252", MotorwayRoads: "#2e3440", OtherRoads: "#4c566a"},
}

// ThemeOrder is the display order of Themes.
var ThemeOrder = []ColorTheme{ThemeDefault, ThemeMonochrome, ThemeNight}

// LightPreset names a time-of-day lighting setup.
type LightPreset string

const (
	LightDay   LightPreset = "day"
	LightNight LightPreset = "night"
	LightDawn  LightPreset = "dawn"
	LightDusk  LightPreset = "dusk"
)

// LightParams is the concrete ambient and directional lighting of a preset.
type LightParams struct {
	AmbientColor         string     `json:"ambientColor" yaml:"ambientColor"`
	AmbientIntensity     float64    `json:"ambientIntensity" yaml:"ambientIntensity"`
	DirectionalColor     string     `json:"directionalColor" yaml:"directionalColor"`
	DirectionalIntensity float64    `json:"directionalIntensity" yaml:"directionalIntensity"`
	Direction            [2]float64 `json:"direction" yaml:"direction,flow"`
	ShadowIntensity      float64    `json:"shadowIntensity" yaml:"shadowIntensity"`
}

// dayLight is the baseline the other presets start from.
var dayLight = LightParams{
	AmbientColor:         "#ffffff",
	AmbientIntensity:     0.4,
	DirectionalColor:     "#fffbe6",
	DirectionalIntensity: 0.6,
	Direction:            [2]float64{210, 30},
	ShadowIntensity:      0.3,
}

// LightPresets maps each preset to its lighting.
var LightPresets = map[LightPreset]LightParams{
	LightDay: dayLight,
	LightNight: {
		AmbientColor:         "#223344",
		AmbientIntensity:     0.2,
		DirectionalColor:     "#aaccff",
		DirectionalIntensity: 0.2,
		Direction:            [2]float64{200, 60},
		ShadowIntensity:      0.7,
	},
	LightDawn: withPalette(dayLight, "#fc8eac", "#ffd580", [2]float64{120, 30}),
	LightDusk: withPalette(dayLight, "#fc8eac", "#ffd580", [2]float64{300, 30}),
}

// LightOrder is the display order of LightPresets.
var LightOrder = []LightPreset{LightDay, LightNight, LightDawn, LightDusk}

func withPalette(base LightParams, ambient, directional string, dir [2]float64) LightParams {
	base.AmbientColor = ambient
	base.DirectionalColor = directional
	base.Direction = dir
	return base
}

// Tables is every lookup table, for listing.
type Tables struct {
	BaseStyles   []BaseStyle                      `json:"baseStyles" yaml:"baseStyles"`
	LightPresets map[LightPreset]LightParams      `json:"lightPresets" yaml:"lightPresets"`
	ColorThemes  map[ColorTheme]map[string]string `json:"colorThemes" yaml:"colorThemes"`
	Visibility   []Category                       `json:"visibility" yaml:"visibility"`
	RoadGroups   []RoadGroup                      `json:"roadGroups" yaml:"roadGroups"`
}

// AllTables returns the lookup tables.
func AllTables() Tables {
	return Tables{
		BaseStyles:   BaseStyles,
		LightPresets: LightPresets,
		ColorThemes:  Themes,
		Visibility:   Categories,
		RoadGroups:   RoadGroups,
	}
}

func findCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func findRoadGroup(name string) (RoadGroup, bool) {
	for _, g := range RoadGroups {
		if g.Name == name {
			return g, true
		}
	}
	return RoadGroup{}, false
}
