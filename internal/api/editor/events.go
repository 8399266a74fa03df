// Package editor contains Datastar SSE handlers for the editor UI.
package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/humastar"
	"github.com/joeblew999/plat-style/internal/service"
)

// EventHandler streams style change events to the Datastar UI via SSE.
type EventHandler struct {
	ed *service.Editor
}

// NewEventHandler creates a new event handler.
func NewEventHandler(ed *service.Editor) *EventHandler {
	return &EventHandler{ed: ed}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events,
		huma.OperationTags("editor"),
	)
}

// Events sends the current revision and settings on connect, then again
// with the triggering event after every change.
func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return humastar.Stream(func(sse humastar.SSE) {
		bus := h.ed.Bus()
		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)

		if err := sse.Signals(h.snapshot(nil)); err != nil {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := sse.Signals(h.snapshot(&ev)); err != nil {
					return
				}
				_ = sse.DispatchCustomEvent("style-changed", ev)
			}
		}
	}), nil
}

func (h *EventHandler) snapshot(ev *service.Event) map[string]any {
	signals := map[string]any{
		"revision": h.ed.Revision(),
		"settings": h.ed.Settings(),
	}
	if ev != nil {
		signals["event"] = ev
	}
	return signals
}
