package service

import (
	"context"

	"github.com/joeblew999/plat-style/internal/settings"
)

// ApplyLightPreset selects a light preset and drives it into the renderer.
// Presets do not record a version.
func (e *Editor) ApplyLightPreset(p settings.LightPreset) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("apply_light_preset", func() error {
		if err := e.applyLights(p); err != nil {
			return err
		}
		e.updateSettings(func(s *settings.Settings) { s.LightPreset = p })
		e.refresh()
		e.log.Info("light preset applied", "op", "apply_light_preset", "preset", p)
		e.publish("settings", "updated", "lightPreset")
		return nil
	})
}

// applyLights uses multi-light when the renderer has it and the single
// legacy light otherwise. Must be called with e.mu held.
func (e *Editor) applyLights(p settings.LightPreset) error {
	lights, legacy, err := settings.LightsFor(p)
	if err != nil {
		return err
	}
	if e.r.Capabilities().MultiLight {
		err = e.r.SetLights(lights)
	} else {
		err = e.r.SetSingleLight(legacy)
	}
	if err != nil {
		return rendererError("apply lights", err)
	}
	return nil
}

// ApplyColorTheme rewrites the three road groups to the theme's palette.
// Either every write lands or none does.
func (e *Editor) ApplyColorTheme(theme settings.ColorTheme) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("apply_color_theme", func() error {
		doc := e.Document()
		patches, err := settings.ThemePatches(&doc, theme)
		if err != nil {
			return err
		}
		if err := e.applyPatches(patches); err != nil {
			e.refresh()
			return err
		}
		e.updateSettings(func(s *settings.Settings) {
			s.ColorTheme = theme
			for group, color := range settings.Themes[theme] {
				s.RoadColors[group] = color
			}
		})
		e.refresh()
		e.log.Info("color theme applied", "op", "apply_color_theme", "theme", theme, "patches", len(patches))
		e.publish("settings", "updated", "colorTheme")
		return nil
	})
}

// SetRoadColor colors one road group. Outline layers get a darker shade.
func (e *Editor) SetRoadColor(group, color string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("set_road_color", func() error {
		doc := e.Document()
		patches, err := settings.RoadColorPatches(&doc, group, color)
		if err != nil {
			return err
		}
		if err := e.applyPatches(patches); err != nil {
			e.refresh()
			return err
		}
		e.updateSettings(func(s *settings.Settings) { s.RoadColors[group] = color })
		e.refresh()
		e.log.Info("road color set", "op", "set_road_color", "group", group, "color", color)
		e.publish("settings", "updated", "roadColors."+group)
		return nil
	})
}

// SetVisibility shows or hides a named category of base-style layers.
func (e *Editor) SetVisibility(category string, visible bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("set_visibility", func() error {
		doc := e.Document()
		patches, err := settings.VisibilityPatches(&doc, category, visible)
		if err != nil {
			return err
		}
		if err := e.applyPatches(patches); err != nil {
			e.refresh()
			return err
		}
		e.updateSettings(func(s *settings.Settings) { s.Visibility[category] = visible })
		e.refresh()
		e.log.Info("visibility set", "op", "set_visibility", "category", category, "visible", visible)
		e.publish("settings", "updated", "visibilitySettings."+category)
		return nil
	})
}

// SwitchBaseStyle loads another base style. The camera is kept and the
// selected light preset is driven again once the new style has loaded.
// User layers do not carry over.
func (e *Editor) SwitchBaseStyle(ctx context.Context, nameOrURL string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("switch_base_style", func() error {
		base, err := settings.ResolveBaseStyle(nameOrURL)
		if err != nil {
			return err
		}
		doc, err := e.styles.Load(ctx, base)
		if err != nil {
			return err
		}

		view := e.r.Viewport()
		undo, err := e.replaceAndWait(ctx, doc)
		if err != nil {
			return err
		}
		e.r.SetViewport(view)

		preset := e.Settings().LightPreset
		if err := e.applyLights(preset); err != nil {
			undo()
			return err
		}
		e.updateSettings(func(s *settings.Settings) { s.BaseStyle = base.Name })
		e.refresh()
		e.log.Info("base style switched", "op", "switch_base_style", "base_style", base.Name)
		e.publish("style", "updated", base.Name)
		return nil
	})
}
