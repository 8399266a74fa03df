// Package style defines the map style document: layers, sources and lights,
// plus the closed property vocabulary each layer type accepts.
package style

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Properties is a paint or layout map. Values are JSON values: strings,
// float64 numbers, bools, nil, []any expressions and map[string]any.
type Properties map[string]any

// Document is the full declarative description the renderer draws.
// Layer order is paint order, first to last.
type Document struct {
	Version  int               `json:"version" validate:"gte=0"`
	Name     string            `json:"name,omitempty"`
	Sprite   string            `json:"sprite,omitempty"`
	Glyphs   string            `json:"glyphs,omitempty"`
	Center   []float64         `json:"center,omitempty" validate:"omitempty,len=2"`
	Zoom     *float64          `json:"zoom,omitempty"`
	Bearing  *float64          `json:"bearing,omitempty"`
	Pitch    *float64          `json:"pitch,omitempty"`
	Sources  map[string]Source `json:"sources" validate:"dive"`
	Layers   []Layer           `json:"layers" validate:"dive"`
	Light    *LegacyLight      `json:"light,omitempty"`
	Lights   []Light           `json:"lights,omitempty" validate:"dive"`
	Metadata map[string]any    `json:"metadata,omitempty"`

	// Extra carries top-level keys this package does not model (fog,
	// terrain, projection, imports, transition) through decode and encode.
	Extra map[string]json.RawMessage `json:"-"`
}

// Source is a data source definition.
type Source struct {
	Type        string    `json:"type" validate:"required"`
	URL         string    `json:"url,omitempty"`
	Tiles       []string  `json:"tiles,omitempty"`
	TileSize    int       `json:"tileSize,omitempty"`
	MinZoom     *float64  `json:"minzoom,omitempty"`
	MaxZoom     *float64  `json:"maxzoom,omitempty"`
	Bounds      []float64 `json:"bounds,omitempty"`
	Attribution string    `json:"attribution,omitempty"`
	Data        any       `json:"data,omitempty"`
}

// Layer is one paintable unit of the document. Source is the owning source
// id; InlineSource is set instead when the layer embeds its source.
type Layer struct {
	ID           string         `json:"id" validate:"required"`
	Type         LayerType      `json:"type" validate:"required,oneof=fill line circle symbol raster background"`
	Source       string         `json:"-"`
	InlineSource *Source        `json:"-"`
	SourceLayer  string         `json:"source-layer,omitempty"`
	Slot         string         `json:"slot,omitempty"`
	Filter       any            `json:"filter,omitempty"`
	MinZoom      *float64       `json:"minzoom,omitempty"`
	MaxZoom      *float64       `json:"maxzoom,omitempty"`
	Paint        Properties     `json:"paint,omitempty"`
	Layout       Properties     `json:"layout,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Light is one entry of the multi-light model ("ambient", "directional").
type Light struct {
	ID         string         `json:"id" validate:"required"`
	Type       string         `json:"type" validate:"required"`
	Properties map[string]any `json:"properties,omitempty"`
}

// LegacyLight is the single global light older renderers support.
type LegacyLight struct {
	Anchor    string    `json:"anchor,omitempty"`
	Color     string    `json:"color,omitempty"`
	Intensity *float64  `json:"intensity,omitempty"`
	Position  []float64 `json:"position,omitempty"`
}

type documentJSON Document

var documentKeys = []string{"version", "name", "sprite", "glyphs", "center", "zoom", "bearing",
	"pitch", "sources", "layers", "light", "lights", "metadata"}

// MarshalJSON writes the modeled fields, then the Extra keys in sorted order.
func (d Document) MarshalJSON() ([]byte, error) {
	out, err := json.Marshal(documentJSON(d))
	if err != nil || len(d.Extra) == 0 {
		return out, err
	}

	keys := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		if !slices.Contains(documentKeys, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.Write(out[:len(out)-1])
	for _, k := range keys {
		raw := d.Extra[k]
		if !json.Valid(raw) {
			return nil, fmt.Errorf("style: extra key %q holds invalid JSON", k)
		}
		name, _ := json.Marshal(k)
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the modeled fields and keeps every other top-level
// key in Extra.
func (d *Document) UnmarshalJSON(data []byte) error {
	var doc documentJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range documentKeys {
		delete(all, k)
	}
	doc.Extra = nil
	if len(all) > 0 {
		doc.Extra = all
	}
	*d = Document(doc)
	return nil
}

type layerJSON Layer

type layerWire struct {
	layerJSON
	Source json.RawMessage `json:"source,omitempty"`
}

// MarshalJSON writes source as an id string or as an inline object.
func (l Layer) MarshalJSON() ([]byte, error) {
	w := layerWire{layerJSON: layerJSON(l)}
	var err error
	switch {
	case l.InlineSource != nil:
		w.Source, err = json.Marshal(l.InlineSource)
	case l.Source != "":
		w.Source, err = json.Marshal(l.Source)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts source as an id string or as an inline object.
func (l *Layer) UnmarshalJSON(data []byte) error {
	var w layerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*l = Layer(w.layerJSON)
	raw := bytes.TrimSpace(w.Source)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		return json.Unmarshal(raw, &l.Source)
	default:
		var src Source
		if err := json.Unmarshal(raw, &src); err != nil {
			return err
		}
		l.InlineSource = &src
	}
	return nil
}

// Layer returns the layer with the given id. The pointer aliases d.Layers.
func (d Document) Layer(id string) (*Layer, bool) {
	for i := range d.Layers {
		if d.Layers[i].ID == id {
			return &d.Layers[i], true
		}
	}
	return nil, false
}

// HasLayer reports whether a layer with the given id exists.
func (d Document) HasLayer(id string) bool {
	_, ok := d.Layer(id)
	return ok
}

// LayerIDs returns layer ids in paint order.
func (d Document) LayerIDs() []string {
	ids := make([]string, len(d.Layers))
	for i, l := range d.Layers {
		ids[i] = l.ID
	}
	return ids
}

// Property reads one property of a layer.
func (l *Layer) Property(ns Namespace, name string) (any, bool) {
	var props Properties
	switch ns {
	case Paint:
		props = l.Paint
	case Layout:
		props = l.Layout
	}
	v, ok := props[name]
	return v, ok
}

// Visible reports whether the layer is not explicitly hidden.
func (l *Layer) Visible() bool {
	v, _ := l.Property(Layout, "visibility")
	return v != "none"
}

// userLayerPrefixes mark layers created by the editor rather than the base style.
var userLayerPrefixes = []string{"custom-", "imported-", "geojson-", "csv-", "url-", "file-", "sample-"}

// IsUserLayer reports whether id names a user-created layer.
func IsUserLayer(id string) bool {
	for _, p := range userLayerPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
