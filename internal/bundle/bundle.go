// Package bundle reads and writes the portable export format: a style
// document plus the named settings that were active when it was saved.
//
// Two shapes are accepted on import. The bundle shape is an object with a
// "style" key (and optionally "globalSettings"); anything else is read as a
// bare style document.
package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joeblew999/plat-style/internal/settings"
	"github.com/joeblew999/plat-style/internal/style"
)

// Extension is the style-specific file extension.
const Extension = ".mfc"

// DefaultFilename is the suggested name for an exported bundle.
const DefaultFilename = "mapfi-style" + Extension

// Extensions lists the file extensions Import accepts.
var Extensions = []string{Extension, ".json"}

// Bundle is a decoded import. GlobalSettings is nil for a bare document.
type Bundle struct {
	Style          style.Document     `json:"style"`
	GlobalSettings *settings.Settings `json:"globalSettings,omitempty"`
}

// globalSettingsWire is the on-disk globalSettings object. Every field is
// optional; missing ones fall back to the defaults.
type globalSettingsWire struct {
	BaseMapStyle       *string           `json:"baseMapStyle"`
	ColorTheme         *string           `json:"colorTheme"`
	LightPreset        *string           `json:"lightPreset"`
	VisibilitySettings map[string]bool   `json:"visibilitySettings"`
	RoadColors         map[string]string `json:"roadColors"`
}

// CheckExtension rejects filenames without an accepted extension.
func CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, ok := range Extensions {
		if ext == ok {
			return nil
		}
	}
	return style.Errorf(style.KindInvalidDocument, "import", "%q: expected a %s file", filename, strings.Join(Extensions, " or "))
}

// Encode writes doc and s as an indented bundle.
func Encode(doc style.Document, s settings.Settings) ([]byte, error) {
	gs := s.Clone()
	return json.MarshalIndent(Bundle{Style: doc, GlobalSettings: &gs}, "", "  ")
}

// EncodeDocument writes doc alone, as an indented bare style document.
func EncodeDocument(doc style.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses either shape and fully validates the result before
// returning it. Every failure is KindInvalidDocument.
func Decode(data []byte) (Bundle, error) {
	const op = "decode bundle"

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Bundle{}, style.Wrap(style.KindInvalidDocument, op, err)
	}
	if top == nil {
		return Bundle{}, style.Errorf(style.KindInvalidDocument, op, "expected a JSON object")
	}

	var b Bundle
	raw, isBundle := top["style"]
	if !isBundle {
		raw = data
	}
	if err := decodeStrict(raw, &b.Style); err != nil {
		return Bundle{}, style.Wrap(style.KindInvalidDocument, op, fmt.Errorf("style: %w", err))
	}
	if err := style.Validate(&b.Style); err != nil {
		return Bundle{}, err
	}

	if gsRaw, ok := top["globalSettings"]; isBundle && ok && !isNull(gsRaw) {
		gs, err := decodeSettings(gsRaw)
		if err != nil {
			return Bundle{}, style.Wrap(style.KindInvalidDocument, op, fmt.Errorf("globalSettings: %w", err))
		}
		b.GlobalSettings = &gs
	}
	return b, nil
}

func decodeStrict(raw json.RawMessage, doc *style.Document) error {
	if isNull(raw) {
		return fmt.Errorf("missing")
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return err
	}
	if doc.Layers == nil {
		return fmt.Errorf("no layers")
	}
	return nil
}

func decodeSettings(raw json.RawMessage) (settings.Settings, error) {
	var w globalSettingsWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return settings.Settings{}, err
	}

	s := settings.Defaults()
	if w.BaseMapStyle != nil {
		b, err := settings.ResolveBaseStyle(*w.BaseMapStyle)
		if err != nil {
			return settings.Settings{}, err
		}
		s.BaseStyle = b.Name
	}
	if w.ColorTheme != nil {
		s.ColorTheme = settings.ColorTheme(*w.ColorTheme)
	}
	if w.LightPreset != nil {
		s.LightPreset = settings.LightPreset(*w.LightPreset)
	}
	for k, v := range w.VisibilitySettings {
		s.Visibility[k] = v
	}
	for k, v := range w.RoadColors {
		s.RoadColors[k] = v
	}
	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
