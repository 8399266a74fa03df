package settings

import (
	"maps"
	"reflect"

	"github.com/brunoga/deep"

	"github.com/joeblew999/plat-style/internal/style"
)

// Settings is the named-setting view over a document. BaseStyle and
// LightPreset are selections the document cannot always disambiguate, so
// derivation keeps the prior value when the document gives no exact answer.
type Settings struct {
	BaseStyle   string            `json:"baseMapStyle" yaml:"baseMapStyle"`
	ColorTheme  ColorTheme        `json:"colorTheme" yaml:"colorTheme"`
	LightPreset LightPreset       `json:"lightPreset" yaml:"lightPreset"`
	Visibility  map[string]bool   `json:"visibilitySettings" yaml:"visibilitySettings"`
	RoadColors  map[string]string `json:"roadColors" yaml:"roadColors"`
}

// Defaults returns the settings of a freshly opened editor.
func Defaults() Settings {
	s := Settings{
		BaseStyle:   BaseStyles[0].Name,
		ColorTheme:  ThemeDefault,
		LightPreset: LightDay,
		Visibility:  make(map[string]bool, len(Categories)),
		RoadColors:  make(map[string]string, len(RoadGroups)),
	}
	for _, c := range Categories {
		s.Visibility[c.Name] = true
	}
	for _, g := range RoadGroups {
		s.RoadColors[g.Name] = g.Default
	}
	return s
}

// Clone returns a copy that shares no maps with s.
func (s Settings) Clone() Settings {
	return deep.MustCopy(s)
}

// Validate checks every value names a known table entry. Failures are
// KindInvalidSetting.
func (s Settings) Validate() error {
	const op = "validate settings"
	if _, err := ResolveBaseStyle(s.BaseStyle); err != nil {
		return err
	}
	if _, ok := Themes[s.ColorTheme]; !ok {
		return style.Errorf(style.KindInvalidSetting, op, "unknown color theme %q", s.ColorTheme)
	}
	if _, ok := LightPresets[s.LightPreset]; !ok {
		return style.Errorf(style.KindInvalidSetting, op, "unknown light preset %q", s.LightPreset)
	}
	for name := range s.Visibility {
		if _, ok := findCategory(name); !ok {
			return style.Errorf(style.KindInvalidSetting, op, "unknown visibility category %q", name)
		}
	}
	for name, color := range s.RoadColors {
		if _, ok := findRoadGroup(name); !ok {
			return style.Errorf(style.KindInvalidSetting, op, "unknown road group %q", name)
		}
		if _, err := parseHex(color); err != nil {
			return err
		}
	}
	return nil
}

// Derive reads the named settings off doc. Anything the document does not
// determine is carried over from prior.
func Derive(doc *style.Document, prior Settings) Settings {
	out := prior.Clone()
	if out.Visibility == nil {
		out.Visibility = map[string]bool{}
	}
	if out.RoadColors == nil {
		out.RoadColors = map[string]string{}
	}

	if doc.Sprite != "" {
		if b, err := ResolveBaseStyle(StyleURLFromSprite(doc.Sprite)); err == nil {
			out.BaseStyle = b.Name
		}
	}

	for _, c := range Categories {
		present := false
		visible := true
		for _, id := range c.LayerIDs {
			l, ok := doc.Layer(id)
			if !ok {
				continue
			}
			present = true
			visible = visible && l.Visible()
		}
		if present {
			out.Visibility[c.Name] = visible
		} else if _, ok := out.Visibility[c.Name]; !ok {
			out.Visibility[c.Name] = true
		}
	}

	for _, g := range RoadGroups {
		if color, ok := groupColor(doc, g); ok {
			out.RoadColors[g.Name] = color
		} else if _, ok := out.RoadColors[g.Name]; !ok {
			out.RoadColors[g.Name] = g.Default
		}
	}

	if t, ok := matchTheme(out.RoadColors); ok {
		out.ColorTheme = t
	}
	if p, ok := matchLights(doc.Lights); ok {
		out.LightPreset = p
	}
	return out
}

// groupColor is the line-color of the first present mapped layer that has one.
func groupColor(doc *style.Document, g RoadGroup) (string, bool) {
	for _, id := range g.LayerIDs {
		l, ok := doc.Layer(id)
		if !ok {
			continue
		}
		v, _ := l.Property(style.Paint, "line-color")
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

func matchTheme(colors map[string]string) (ColorTheme, bool) {
	for _, t := range ThemeOrder {
		if maps.Equal(Themes[t], colors) {
			return t, true
		}
	}
	return "", false
}

func matchLights(lights []style.Light) (LightPreset, bool) {
	if len(lights) == 0 {
		return "", false
	}
	for _, p := range LightOrder {
		want, _, _ := LightsFor(p)
		if reflect.DeepEqual(want, lights) {
			return p, true
		}
	}
	return "", false
}
