package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-style/internal/style"
)

// LightsFor returns the multi-light configuration of a preset and the
// single legacy light to fall back to when the renderer lacks multi-light.
func LightsFor(p LightPreset) ([]style.Light, style.LegacyLight, error) {
	params, ok := LightPresets[p]
	if !ok {
		return nil, style.LegacyLight{}, style.Errorf(style.KindInvalidSetting, "light preset", "unknown light preset %q", p)
	}
	lights := []style.Light{
		{
			ID:   "ambient",
			Type: "ambient",
			Properties: map[string]any{
				"color":     params.AmbientColor,
				"intensity": params.AmbientIntensity,
			},
		},
		{
			ID:   "directional",
			Type: "directional",
			Properties: map[string]any{
				"color":            params.DirectionalColor,
				"intensity":        params.DirectionalIntensity,
				"direction":        []any{params.Direction[0], params.Direction[1]},
				"shadow-intensity": params.ShadowIntensity,
			},
		},
	}
	intensity := params.AmbientIntensity
	legacy := style.LegacyLight{Anchor: "viewport", Color: params.AmbientColor, Intensity: &intensity}
	return lights, legacy, nil
}

// VisibilityPatches plans the layout writes that show or hide a category.
// Mapped layers missing from doc are skipped.
func VisibilityPatches(doc *style.Document, category string, visible bool) ([]style.Patch, error) {
	c, ok := findCategory(category)
	if !ok {
		return nil, style.Errorf(style.KindInvalidSetting, "visibility", "unknown visibility category %q", category)
	}
	value := "none"
	if visible {
		value = "visible"
	}
	var patches []style.Patch
	for _, id := range c.LayerIDs {
		if !doc.HasLayer(id) {
			continue
		}
		patches = append(patches, style.Patch{LayerID: id, Namespace: style.Layout, Name: "visibility", Value: value})
	}
	return patches, nil
}

// RoadColorPatches plans the line-color writes for one road group. Outline
// layers get the color darkened by CaseDarkening.
func RoadColorPatches(doc *style.Document, group, color string) ([]style.Patch, error) {
	g, ok := findRoadGroup(group)
	if !ok {
		return nil, style.Errorf(style.KindInvalidSetting, "road color", "unknown road group %q", group)
	}
	darker, err := AdjustBrightness(color, CaseDarkening)
	if err != nil {
		return nil, err
	}
	var patches []style.Patch
	for _, id := range g.LayerIDs {
		if !doc.HasLayer(id) {
			continue
		}
		value := color
		if strings.Contains(id, caseMarker) {
			value = darker
		}
		patches = append(patches, style.Patch{LayerID: id, Namespace: style.Paint, Name: "line-color", Value: value})
	}
	return patches, nil
}

// ThemePatches plans the road-color writes of a theme, group by group in
// table order.
func ThemePatches(doc *style.Document, theme ColorTheme) ([]style.Patch, error) {
	colors, ok := Themes[theme]
	if !ok {
		return nil, style.Errorf(style.KindInvalidSetting, "color theme", "unknown color theme %q", theme)
	}
	var patches []style.Patch
	for _, g := range RoadGroups {
		p, err := RoadColorPatches(doc, g.Name, colors[g.Name])
		if err != nil {
			return nil, err
		}
		patches = append(patches, p...)
	}
	return patches, nil
}

// AdjustBrightness shifts each RGB channel of a #rrggbb color by
// factor×255, clamped to [0,255]. Negative factors darken.
func AdjustBrightness(hex string, factor float64) (string, error) {
	rgb, err := parseHex(hex)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteByte('#')
	for _, c := range rgb {
		v := math.Floor(float64(c) + factor*255 + 0.5)
		v = math.Min(255, math.Max(0, v))
		fmt.Fprintf(&b, "%02x", int(v))
	}
	return b.String(), nil
}

func parseHex(hex string) ([3]uint8, error) {
	var rgb [3]uint8
	if len(hex) != 7 || hex[0] != '#' {
		return rgb, style.Errorf(style.KindInvalidSetting, "parse color", "%q is not a #rrggbb color", hex)
	}
	for i := range rgb {
		v, err := strconv.ParseUint(hex[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return rgb, style.Errorf(style.KindInvalidSetting, "parse color", "%q is not a #rrggbb color", hex)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}
