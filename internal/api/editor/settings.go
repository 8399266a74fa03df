package editor

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/humastar"
	"github.com/joeblew999/plat-style/internal/service"
	"github.com/joeblew999/plat-style/internal/settings"
)

// SettingsHandler applies named settings posted as Datastar signals.
type SettingsHandler struct {
	ed *service.Editor
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(ed *service.Editor) *SettingsHandler {
	return &SettingsHandler{ed: ed}
}

func (h *SettingsHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/editor/settings", h.Apply,
		huma.OperationTags("editor"),
	)
}

// Apply reads the setting signals that are present and applies them in a
// fixed order: base style, light preset, color theme, road color,
// visibility. The first failure stops the rest and is reported as an
// error signal.
//
// Signals: basestyle, lightpreset, colortheme, roadgroup + roadcolor,
// category + visible.
func (h *SettingsHandler) Apply(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}

	applied, err := h.apply(ctx, signals)
	return humastar.Stream(func(sse humastar.SSE) {
		if err != nil {
			_ = sse.Error(err.Error())
		} else {
			_ = sse.Success(fmt.Sprintf("Applied %d setting(s)", applied))
		}
		_ = sse.Signals(map[string]any{
			"revision": h.ed.Revision(),
			"settings": h.ed.Settings(),
		})
	}), nil
}

func (h *SettingsHandler) apply(ctx context.Context, s humastar.Signals) (int, error) {
	applied := 0
	if v := s.String("basestyle"); v != "" {
		if err := h.ed.SwitchBaseStyle(ctx, v); err != nil {
			return applied, err
		}
		applied++
	}
	if v := s.String("lightpreset"); v != "" {
		if err := h.ed.ApplyLightPreset(settings.LightPreset(v)); err != nil {
			return applied, err
		}
		applied++
	}
	if v := s.String("colortheme"); v != "" {
		if err := h.ed.ApplyColorTheme(settings.ColorTheme(v)); err != nil {
			return applied, err
		}
		applied++
	}
	if group := s.String("roadgroup"); group != "" {
		if err := h.ed.SetRoadColor(group, s.String("roadcolor")); err != nil {
			return applied, err
		}
		applied++
	}
	if category := s.String("category"); category != "" && s.Has("visible") {
		if err := h.ed.SetVisibility(category, s.Bool("visible")); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
