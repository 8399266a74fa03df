package renderer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-style/internal/style"
)

// Memory is an in-process renderer. It keeps the authoritative style and
// camera, applies the same validation and coercion a GL renderer would, and
// reports load completion through registered listeners.
type Memory struct {
	mu        sync.RWMutex
	doc       style.Document
	viewport  Viewport
	caps      Capabilities
	deferLoad bool
	pending   int

	lmu       sync.Mutex
	listeners map[int]func()
	nextID    int
}

// Option configures a Memory renderer.
type Option func(*Memory)

// WithDeferredLoad holds load notifications until Flush is called, the way
// a real renderer finishes loading a style some time after setStyle.
func WithDeferredLoad() Option {
	return func(m *Memory) { m.deferLoad = true }
}

// WithoutMultiLight makes the renderer expose only the single legacy light.
func WithoutMultiLight() Option {
	return func(m *Memory) { m.caps.MultiLight = false }
}

// WithViewport sets the initial camera.
func WithViewport(v Viewport) Option {
	return func(m *Memory) { m.viewport = v }
}

// NewMemory creates a renderer holding an empty style.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		doc: style.Document{
			Version: 8,
			Sources: map[string]style.Source{},
			Layers:  []style.Layer{},
		},
		viewport:  Viewport{Center: orb.Point{0, 0}},
		caps:      Capabilities{MultiLight: true},
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Document returns a deep copy of the current style.
func (m *Memory) Document() style.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// ReplaceDocument validates and installs doc, applies its declared camera and
// signals load completion (immediately, or on Flush in deferred mode).
func (m *Memory) ReplaceDocument(doc style.Document) error {
	next := doc.Clone()
	if err := style.Validate(&next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if next.Sources == nil {
		next.Sources = map[string]style.Source{}
	}
	if next.Layers == nil {
		next.Layers = []style.Layer{}
	}
	for i := range next.Layers {
		l := &next.Layers[i]
		if l.InlineSource != nil {
			if _, exists := next.Sources[l.ID]; exists {
				return fmt.Errorf("%w: inline source %q", ErrDuplicateSource, l.ID)
			}
			next.Sources[l.ID] = *l.InlineSource
			l.Source = l.ID
			l.InlineSource = nil
		}
		normalizeProperties(l.Paint)
		normalizeProperties(l.Layout)
	}

	m.mu.Lock()
	m.doc = next
	if len(next.Center) == 2 {
		m.viewport.Center = orb.Point{next.Center[0], next.Center[1]}
	}
	if next.Zoom != nil {
		m.viewport.Zoom = *next.Zoom
	}
	if next.Pitch != nil {
		m.viewport.Pitch = *next.Pitch
	}
	if next.Bearing != nil {
		m.viewport.Bearing = *next.Bearing
	}
	deferLoad := m.deferLoad
	if deferLoad {
		m.pending++
	}
	m.mu.Unlock()

	if !deferLoad {
		m.notifyLoaded()
	}
	return nil
}

// Flush fires every held load notification and returns how many fired.
func (m *Memory) Flush() int {
	m.mu.Lock()
	n := m.pending
	m.pending = 0
	m.mu.Unlock()

	for i := 0; i < n; i++ {
		m.notifyLoaded()
	}
	return n
}

// OnDocumentLoaded registers fn for every load completion.
func (m *Memory) OnDocumentLoaded(fn func()) func() {
	m.lmu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.lmu.Unlock()

	return func() {
		m.lmu.Lock()
		delete(m.listeners, id)
		m.lmu.Unlock()
	}
}

func (m *Memory) notifyLoaded() {
	m.lmu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Viewport returns the live camera.
func (m *Memory) Viewport() Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// SetViewport moves the camera.
func (m *Memory) SetViewport(v Viewport) {
	m.mu.Lock()
	m.viewport = v
	m.mu.Unlock()
}

// LayerExists reports whether a layer with the id is in the style.
func (m *Memory) LayerExists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.HasLayer(id)
}

// LayerProperty reads one property; a missing property reads as nil.
func (m *Memory) LayerProperty(layerID string, ns style.Namespace, name string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layer, ok := m.doc.Layer(layerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLayerNotFound, layerID)
	}
	v, _ := layer.Property(ns, name)
	return style.CloneValue(v), nil
}

// SetLayerProperty validates, coerces and writes one property.
func (m *Memory) SetLayerProperty(layerID string, ns style.Namespace, name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, ok := m.doc.Layer(layerID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrLayerNotFound, layerID)
	}
	if err := style.CheckProperty(layer.Type, ns, name); err != nil {
		return fmt.Errorf("%w: %s.%s on %s layer %q", ErrInvalidProperty, ns, name, layer.Type, layerID)
	}

	props := &layer.Paint
	if ns == style.Layout {
		props = &layer.Layout
	}
	if value == nil {
		delete(*props, name)
		if len(*props) == 0 {
			*props = nil
		}
		return nil
	}

	coerced, err := coerceValue(name, normalizeValue(style.CloneValue(value)))
	if err != nil {
		return err
	}
	if *props == nil {
		*props = style.Properties{}
	}
	(*props)[name] = coerced
	return nil
}

// AddLayer appends layer on top of the paint order. An inline source is
// registered under the layer's id.
func (m *Memory) AddLayer(layer style.Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc.HasLayer(layer.ID) {
		return fmt.Errorf("%w: %q", ErrDuplicateLayer, layer.ID)
	}
	l := layer.Clone()
	if !l.Type.Valid() {
		return fmt.Errorf("%w: layer type %q", ErrInvalidDocument, l.Type)
	}
	for _, ns := range []style.Namespace{style.Paint, style.Layout} {
		props := l.Paint
		if ns == style.Layout {
			props = l.Layout
		}
		for name, v := range props {
			if err := style.CheckProperty(l.Type, ns, name); err != nil {
				return fmt.Errorf("%w: %s.%s on %s layer %q", ErrInvalidProperty, ns, name, l.Type, l.ID)
			}
			coerced, err := coerceValue(name, normalizeValue(v))
			if err != nil {
				return err
			}
			props[name] = coerced
		}
	}

	switch {
	case l.InlineSource != nil:
		if _, exists := m.doc.Sources[l.ID]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateSource, l.ID)
		}
		m.doc.Sources[l.ID] = *l.InlineSource
		l.Source = l.ID
		l.InlineSource = nil
	case l.Source != "":
		if _, ok := m.doc.Sources[l.Source]; !ok {
			return fmt.Errorf("%w: %q", ErrSourceNotFound, l.Source)
		}
	}
	m.doc.Layers = append(m.doc.Layers, l)
	return nil
}

// RemoveLayer deletes a layer, keeping the order of the rest.
func (m *Memory) RemoveLayer(layerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.doc.Layers {
		if m.doc.Layers[i].ID == layerID {
			m.doc.Layers = append(m.doc.Layers[:i], m.doc.Layers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrLayerNotFound, layerID)
}

// AddSource registers a new source.
func (m *Memory) AddSource(id string, src style.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.doc.Sources[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSource, id)
	}
	if src.Type == "" {
		return fmt.Errorf("%w: source %q has no type", ErrInvalidDocument, id)
	}
	m.doc.Sources[id] = src.Clone()
	return nil
}

// RemoveSource deletes a source no layer references.
func (m *Memory) RemoveSource(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.doc.Sources[id]; !ok {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}
	for _, l := range m.doc.Layers {
		if l.Source == id {
			return fmt.Errorf("%w: %q used by layer %q", ErrSourceInUse, id, l.ID)
		}
	}
	delete(m.doc.Sources, id)
	return nil
}

// Capabilities reports the optional features this renderer supports.
func (m *Memory) Capabilities() Capabilities {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caps
}

// SetLights replaces the multi-light configuration.
func (m *Memory) SetLights(lights []style.Light) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.caps.MultiLight {
		return ErrUnsupported
	}
	next := make([]style.Light, len(lights))
	for i, l := range lights {
		if l.ID == "" || l.Type == "" {
			return fmt.Errorf("%w: light needs id and type", ErrInvalidValue)
		}
		props, _ := normalizeValue(style.CloneValue(map[string]any(l.Properties))).(map[string]any)
		next[i] = style.Light{ID: l.ID, Type: l.Type, Properties: props}
	}
	m.doc.Lights = next
	return nil
}

// SetSingleLight replaces the legacy global light.
func (m *Memory) SetSingleLight(light style.LegacyLight) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := light
	if light.Intensity != nil {
		v := *light.Intensity
		l.Intensity = &v
	}
	if light.Position != nil {
		l.Position = append([]float64(nil), light.Position...)
	}
	m.doc.Light = &l
	return nil
}

func normalizeProperties(p style.Properties) {
	for k, v := range p {
		p[k] = normalizeValue(v)
	}
}

// normalizeValue converts Go numeric types to float64 the way a JSON
// round trip through the renderer would.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case []float64:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = f
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeValue(t[k])
		}
		return t
	}
	return v
}

// coerceValue rejects values of the wrong shape and clamps numeric ranges.
// Arrays are expressions and pass through unevaluated.
func coerceValue(name string, v any) (any, error) {
	if _, isExpr := v.([]any); isExpr {
		return v, nil
	}
	switch {
	case name == "visibility":
		if v != "visible" && v != "none" {
			return nil, fmt.Errorf("%w: visibility must be \"visible\" or \"none\", got %v", ErrInvalidValue, v)
		}
	case strings.HasSuffix(name, "-color"):
		if _, ok := v.(string); !ok {
			return nil, fmt.Errorf("%w: %s must be a color string, got %T", ErrInvalidValue, name, v)
		}
	case strings.HasSuffix(name, "-opacity"):
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidValue, name, v)
		}
		return clamp(f, 0, 1), nil
	case strings.HasSuffix(name, "-width"), strings.HasSuffix(name, "-radius"),
		strings.HasSuffix(name, "-blur"), strings.HasSuffix(name, "-size"):
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidValue, name, v)
		}
		if f < 0 {
			return 0.0, nil
		}
	}
	return v, nil
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
