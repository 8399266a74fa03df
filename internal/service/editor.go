// Package service holds the style editor: the single owner of the live style
// document, the renderer it mirrors, the version history and the named
// settings derived from the document.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brunoga/deep"

	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/ingest"
	"github.com/joeblew999/plat-style/internal/renderer"
	"github.com/joeblew999/plat-style/internal/settings"
	"github.com/joeblew999/plat-style/internal/style"
)

// DefaultLoadTimeout bounds the wait for a replaced style to finish loading.
const DefaultLoadTimeout = 10 * time.Second

// Config wires an Editor. Only Renderer is required.
type Config struct {
	Renderer    renderer.Adapter
	Styles      StyleSource
	Fetcher     *ingest.Fetcher
	Catalog     *ingest.Catalog
	Bus         *EventBus
	Logger      *slog.Logger
	LoadTimeout time.Duration
	Now         func() time.Time
	// BaseStyle is the base style Init loads, by name or URL.
	BaseStyle string
}

// Editor is the style-document state engine. Mutating operations are
// single-flight: each runs to completion before the next starts. Readers
// see the snapshot published by the last completed mutation.
type Editor struct {
	mu sync.Mutex // serializes mutations

	r       renderer.Adapter
	styles  StyleSource
	fetcher *ingest.Fetcher
	catalog *ingest.Catalog
	bus     *EventBus
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
	base    string
	history *history.History

	loadMu       sync.Mutex
	loads        uint64 // load notifications received
	replaced     uint64 // document replacements issued
	loaded       chan struct{}
	cancelLoaded func()

	state    sync.RWMutex
	doc      style.Document
	settings settings.Settings
	revision uint64
}

// New creates an editor over cfg.Renderer. Call Init before use.
func New(cfg Config) (*Editor, error) {
	if cfg.Renderer == nil {
		return nil, errors.New("service: renderer is required")
	}
	e := &Editor{
		r:        cfg.Renderer,
		styles:   cfg.Styles,
		fetcher:  cfg.Fetcher,
		catalog:  cfg.Catalog,
		bus:      cfg.Bus,
		log:      cfg.Logger,
		timeout:  cfg.LoadTimeout,
		now:      cfg.Now,
		base:     cfg.BaseStyle,
		loaded:   make(chan struct{}, 1),
		settings: settings.Defaults(),
	}
	if e.styles == nil {
		e.styles = StaticStyles{}
	}
	if e.fetcher == nil {
		e.fetcher = ingest.NewFetcher(nil)
	}
	if e.bus == nil {
		e.bus = NewEventBus()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.timeout <= 0 {
		e.timeout = DefaultLoadTimeout
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.base == "" {
		e.base = settings.BaseStyles[0].Name
	}
	e.history = history.New(e.now)

	// Load notifications can arrive on the renderer's goroutine or inline
	// from ReplaceDocument, so the callback only counts and signals.
	e.cancelLoaded = e.r.OnDocumentLoaded(func() {
		e.loadMu.Lock()
		e.loads++
		e.loadMu.Unlock()
		select {
		case e.loaded <- struct{}{}:
		default:
		}
	})
	e.doc = e.r.Document()
	return e, nil
}

// Close detaches the editor from the renderer.
func (e *Editor) Close() {
	if e.cancelLoaded != nil {
		e.cancelLoaded()
	}
}

// Bus returns the event bus change events are published on.
func (e *Editor) Bus() *EventBus { return e.bus }

// Catalog returns the local source catalog, or nil.
func (e *Editor) Catalog() *ingest.Catalog { return e.catalog }

// Init loads the configured base style, applies the selected light preset
// and records the "Initial Style" version.
func (e *Editor) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("init", func() error {
		base, err := settings.ResolveBaseStyle(e.base)
		if err != nil {
			return err
		}
		doc, err := e.styles.Load(ctx, base)
		if err != nil {
			return err
		}
		undo, err := e.replaceAndWait(ctx, doc)
		if err != nil {
			return err
		}

		e.state.Lock()
		e.settings.BaseStyle = base.Name
		preset := e.settings.LightPreset
		e.state.Unlock()

		if err := e.applyLights(preset); err != nil {
			undo()
			return err
		}
		e.refresh()
		v := e.saveVersion("Initial Style")
		e.log.Info("editor initialized", "base_style", base.Name, "layers", len(e.Document().Layers), "version", v.ID)
		e.publish("style", "created", base.Name)
		return nil
	})
}

// Document returns a copy of the current document.
func (e *Editor) Document() style.Document {
	e.state.RLock()
	defer e.state.RUnlock()
	return deep.MustCopy(e.doc)
}

// Settings returns the current named settings.
func (e *Editor) Settings() settings.Settings {
	e.state.RLock()
	defer e.state.RUnlock()
	return e.settings.Clone()
}

// Revision counts completed document refreshes.
func (e *Editor) Revision() uint64 {
	e.state.RLock()
	defer e.state.RUnlock()
	return e.revision
}

// Viewport returns the renderer's live camera.
func (e *Editor) Viewport() renderer.Viewport {
	return e.r.Viewport()
}

// SetViewport moves the camera.
func (e *Editor) SetViewport(v renderer.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.r.SetViewport(v)
	e.publish("viewport", "updated", "")
}

// Toggle3D flips the camera pitch between flat and 60 degrees and returns
// the new pitch.
func (e *Editor) Toggle3D() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := e.r.Viewport()
	if v.Pitch > 0 {
		v.Pitch = 0
	} else {
		v.Pitch = 60
	}
	e.r.SetViewport(v)
	e.publish("viewport", "updated", "pitch")
	return v.Pitch
}

// Versions lists saved versions, most recent first.
func (e *Editor) Versions() []history.Summary {
	return e.history.Summaries()
}

// run wraps one operation with metrics and failure logging.
func (e *Editor) run(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	recordOperation(op, start, err)
	if err != nil {
		e.log.Warn("editor operation failed", "op", op, "kind", style.KindOf(err), "error", err)
	}
	return err
}

// refresh re-reads the document from the renderer and re-derives settings.
// Must be called with e.mu held.
func (e *Editor) refresh() {
	doc := e.r.Document()

	e.state.Lock()
	e.settings = settings.Derive(&doc, e.settings)
	e.doc = doc
	e.revision++
	e.state.Unlock()
}

// updateSettings applies fn to the held selections.
func (e *Editor) updateSettings(fn func(s *settings.Settings)) {
	e.state.Lock()
	fn(&e.settings)
	e.state.Unlock()
}

func (e *Editor) saveVersion(name string) history.Version {
	e.state.RLock()
	doc := e.doc
	e.state.RUnlock()
	return e.history.Save(name, doc)
}

func (e *Editor) publish(resource, action, id string) {
	e.bus.Publish(Event{Resource: resource, Action: action, ID: id, Revision: e.Revision()})
}

// replaceAndWait swaps the whole document and blocks until the renderer
// reports that replacement loaded. On failure the previous document and
// camera are put back. On success it returns an undo that does the same, for
// callers with follow-up steps that can still fail. Must be called with e.mu
// held.
func (e *Editor) replaceAndWait(ctx context.Context, doc style.Document) (undo func(), err error) {
	const op = "replace document"

	prev := e.r.Document()
	prevView := e.r.Viewport()
	undo = func() { e.rollback(prev, prevView) }

	gen, err := e.replace(doc)
	if err != nil {
		return nil, rendererError(op, err)
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	for !e.loadedThrough(gen) {
		select {
		case <-e.loaded:
		case <-ctx.Done():
			undo()
			return nil, style.Wrap(style.KindRendererRejected, op, ctx.Err())
		case <-timer.C:
			undo()
			return nil, style.Wrap(style.KindRendererRejected, op,
				fmt.Errorf("style did not finish loading within %s", e.timeout))
		}
	}
	return undo, nil
}

// replace hands doc to the renderer and returns its load generation: the
// replacement is loaded once that many notifications have arrived. Every
// replacement, including rollbacks nobody waits for, owes one notification,
// so a late one never satisfies a newer wait.
func (e *Editor) replace(doc style.Document) (uint64, error) {
	e.loadMu.Lock()
	if e.loads > e.replaced {
		e.loads = e.replaced
	}
	e.replaced++
	gen := e.replaced
	e.loadMu.Unlock()

	if err := e.r.ReplaceDocument(doc); err != nil {
		e.loadMu.Lock()
		e.replaced--
		e.loadMu.Unlock()
		return 0, err
	}
	return gen, nil
}

func (e *Editor) loadedThrough(gen uint64) bool {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.loads >= gen
}

// rollback reinstates a document and camera captured before a replacement.
// It does not wait for the load.
func (e *Editor) rollback(prev style.Document, view renderer.Viewport) {
	if _, err := e.replace(prev); err != nil {
		e.log.Error("restoring previous document failed", "error", err)
	}
	e.r.SetViewport(view)
}

// rendererError translates a renderer rejection into a style error kind.
func rendererError(op string, err error) error {
	switch {
	case errors.Is(err, renderer.ErrLayerNotFound):
		return style.Wrap(style.KindUnknownLayer, op, err)
	case errors.Is(err, renderer.ErrInvalidProperty), errors.Is(err, renderer.ErrInvalidValue):
		return style.Wrap(style.KindInvalidProperty, op, err)
	case errors.Is(err, renderer.ErrInvalidDocument):
		return style.Wrap(style.KindInvalidDocument, op, err)
	}
	return style.Wrap(style.KindRendererRejected, op, err)
}
