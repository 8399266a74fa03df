package service

import (
	"encoding/json"

	"github.com/joeblew999/plat-style/internal/ingest"
	"github.com/joeblew999/plat-style/internal/style"
)

// ApplyProperty writes one paint or layout property and refreshes the
// document from the renderer. It does not record a version.
func (e *Editor) ApplyProperty(layerID string, ns style.Namespace, name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("apply_property", func() error {
		if err := e.patch(style.Patch{LayerID: layerID, Namespace: ns, Name: name, Value: value}); err != nil {
			return err
		}
		e.refresh()
		e.log.Info("property applied", "op", "apply_property", "layer", layerID, "property", string(ns)+"."+name)
		e.publish("layers", "updated", layerID)
		return nil
	})
}

// ApplyExpression parses expr as a JSON value (a literal or an expression
// array) and applies it like ApplyProperty.
func (e *Editor) ApplyExpression(layerID string, ns style.Namespace, name, expr string) error {
	var value any
	if err := json.Unmarshal([]byte(expr), &value); err != nil {
		return style.Errorf(style.KindInvalidProperty, "apply expression", "%s.%s: value is not valid JSON: %v", ns, name, err)
	}
	return e.ApplyProperty(layerID, ns, name, value)
}

// ToggleLayerVisibility flips a layer between visible and hidden and
// reports the new state.
func (e *Editor) ToggleLayerVisibility(layerID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var visible bool
	err := e.run("toggle_visibility", func() error {
		doc := e.Document()
		l, ok := doc.Layer(layerID)
		if !ok {
			return style.Errorf(style.KindUnknownLayer, "toggle visibility", "no layer %q", layerID)
		}
		visible = !l.Visible()
		value := "none"
		if visible {
			value = "visible"
		}
		if err := e.patch(style.Patch{LayerID: layerID, Namespace: style.Layout, Name: "visibility", Value: value}); err != nil {
			return err
		}
		e.refresh()
		e.publish("layers", "updated", layerID)
		return nil
	})
	return visible, err
}

// AllowedProperties returns the paint and layout properties legal for a layer.
func (e *Editor) AllowedProperties(layerID string) (paint, layout []string, err error) {
	doc := e.Document()
	l, ok := doc.Layer(layerID)
	if !ok {
		return nil, nil, style.Errorf(style.KindUnknownLayer, "allowed properties", "no layer %q", layerID)
	}
	return style.AllowedProperties(l.Type, style.Paint), style.AllowedProperties(l.Type, style.Layout), nil
}

// AddLayer appends a user layer of type t with default paint and records
// an "Added layer" version. Data layers get an empty inline GeoJSON source.
func (e *Editor) AddLayer(t style.LayerType) (style.Layer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var added style.Layer
	err := e.run("add_layer", func() error {
		if !t.Valid() {
			return style.Errorf(style.KindInvalidDocument, "add layer", "unsupported layer type %q", t)
		}
		doc := e.Document()
		id := ingest.NewID("custom-"+string(t), e.now(), func(id string) bool {
			_, src := doc.Sources[id]
			return src || doc.HasLayer(id)
		})

		layer := style.Layer{ID: id, Type: t, Paint: style.DefaultPaint(t)}
		switch t {
		case style.TypeBackground:
		case style.TypeRaster:
			layer.InlineSource = &style.Source{Type: "raster", Tiles: []string{}, TileSize: 256}
		default:
			layer.InlineSource = &style.Source{Type: "geojson", Data: emptyFeatureCollection()}
		}

		if err := e.r.AddLayer(layer); err != nil {
			return rendererError("add layer", err)
		}
		e.refresh()
		v := e.saveVersion("Added layer: " + id)
		added = layer
		if l, ok := e.Document().Layer(id); ok {
			added = *l
		}
		e.log.Info("layer added", "op", "add_layer", "layer", id, "version", v.ID)
		e.publish("layers", "created", id)
		return nil
	})
	return added, err
}

// RemoveLayer deletes a user-created layer, and its source when nothing
// else uses it, then records a "Removed layer" version. Base style layers
// are KindProtectedLayer.
func (e *Editor) RemoveLayer(layerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("remove_layer", func() error {
		doc := e.Document()
		l, ok := doc.Layer(layerID)
		if !ok {
			return style.Errorf(style.KindUnknownLayer, "remove layer", "no layer %q", layerID)
		}
		if !style.IsUserLayer(layerID) {
			return style.Errorf(style.KindProtectedLayer, "remove layer", "%q belongs to the base style", layerID)
		}
		if err := e.r.RemoveLayer(layerID); err != nil {
			return rendererError("remove layer", err)
		}
		if l.Source != "" && !sourceInUse(&doc, l.Source, layerID) {
			if err := e.r.RemoveSource(l.Source); err != nil {
				e.log.Warn("source left behind", "source", l.Source, "error", err)
			}
		}
		e.refresh()
		v := e.saveVersion("Removed layer: " + layerID)
		e.log.Info("layer removed", "op", "remove_layer", "layer", layerID, "version", v.ID)
		e.publish("layers", "deleted", layerID)
		return nil
	})
}

// patch validates and writes one property. Must be called with e.mu held.
func (e *Editor) patch(p style.Patch) error {
	const op = "apply property"

	doc := e.Document()
	l, ok := doc.Layer(p.LayerID)
	if !ok || !e.r.LayerExists(p.LayerID) {
		return style.Errorf(style.KindUnknownLayer, op, "no layer %q", p.LayerID)
	}
	if err := style.CheckProperty(l.Type, p.Namespace, p.Name); err != nil {
		return style.Wrap(style.KindInvalidProperty, op, err)
	}
	if err := e.r.SetLayerProperty(p.LayerID, p.Namespace, p.Name, p.Value); err != nil {
		return rendererError(op, err)
	}
	return nil
}

// applyPatches writes patches as one unit. When any write fails the ones
// already written are reverted, newest first. Must be called with e.mu held.
func (e *Editor) applyPatches(patches []style.Patch) error {
	undo := make([]style.Patch, 0, len(patches))
	for _, p := range patches {
		prior, err := e.r.LayerProperty(p.LayerID, p.Namespace, p.Name)
		if err != nil {
			e.rollbackPatches(undo)
			return rendererError("apply patches", err)
		}
		if err := e.patch(p); err != nil {
			e.rollbackPatches(undo)
			return err
		}
		undo = append(undo, style.Patch{LayerID: p.LayerID, Namespace: p.Namespace, Name: p.Name, Value: prior})
	}
	return nil
}

func (e *Editor) rollbackPatches(undo []style.Patch) {
	for i := len(undo) - 1; i >= 0; i-- {
		p := undo[i]
		if err := e.r.SetLayerProperty(p.LayerID, p.Namespace, p.Name, p.Value); err != nil {
			e.log.Error("rollback failed", "layer", p.LayerID, "property", string(p.Namespace)+"."+p.Name, "error", err)
		}
	}
}

func sourceInUse(doc *style.Document, source, except string) bool {
	for _, l := range doc.Layers {
		if l.ID != except && l.Source == source {
			return true
		}
	}
	return false
}

func emptyFeatureCollection() map[string]any {
	return map[string]any{"type": "FeatureCollection", "features": []any{}}
}
