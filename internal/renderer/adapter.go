// Package renderer defines the boundary to the map rendering engine. The
// Adapter is the only thing allowed to mutate live map state; everything
// above it reads the document back after each write.
package renderer

import (
	"errors"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-style/internal/style"
)

// Rejections reported by adapters. Callers translate them into style kinds.
var (
	ErrLayerNotFound   = errors.New("renderer: layer not found")
	ErrInvalidProperty = errors.New("renderer: property not valid for layer")
	ErrInvalidValue    = errors.New("renderer: invalid property value")
	ErrDuplicateLayer  = errors.New("renderer: layer already exists")
	ErrDuplicateSource = errors.New("renderer: source already exists")
	ErrSourceNotFound  = errors.New("renderer: source not found")
	ErrSourceInUse     = errors.New("renderer: source in use")
	ErrInvalidDocument = errors.New("renderer: invalid document")
	ErrUnsupported     = errors.New("renderer: capability not supported")
)

// Viewport is the live camera. It is owned by the renderer, not the document.
type Viewport struct {
	Center  orb.Point `json:"center"`
	Zoom    float64   `json:"zoom"`
	Pitch   float64   `json:"pitch"`
	Bearing float64   `json:"bearing"`
}

// Capabilities describes optional renderer features, checked on every call.
type Capabilities struct {
	// MultiLight is true when SetLights is available; otherwise callers
	// must fall back to SetSingleLight.
	MultiLight bool
}

// Adapter is the capability set consumed from the rendering engine.
type Adapter interface {
	// Document returns a deep copy of the renderer's authoritative style.
	Document() style.Document
	// ReplaceDocument swaps the whole style. Loading completes
	// asynchronously and is signalled through OnDocumentLoaded.
	ReplaceDocument(doc style.Document) error
	// OnDocumentLoaded registers fn for every load completion. The returned
	// func unregisters it.
	OnDocumentLoaded(fn func()) (cancel func())

	Viewport() Viewport
	SetViewport(v Viewport)

	LayerExists(id string) bool
	LayerProperty(layerID string, ns style.Namespace, name string) (any, error)
	// SetLayerProperty writes one property. A nil value resets it.
	SetLayerProperty(layerID string, ns style.Namespace, name string, value any) error
	AddLayer(layer style.Layer) error
	RemoveLayer(layerID string) error
	AddSource(id string, src style.Source) error
	RemoveSource(id string) error

	Capabilities() Capabilities
	SetLights(lights []style.Light) error
	SetSingleLight(light style.LegacyLight) error
}
