package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/service"
)

type InfoHandler struct {
	ed         *service.Editor
	dataDir    string
	multiLight bool
	remote     bool
}

// NewInfoHandler describes the running editor. remote reports whether base
// styles come from the Mapbox Styles API rather than the embedded document.
func NewInfoHandler(ed *service.Editor, dataDir string, multiLight, remote bool) *InfoHandler {
	return &InfoHandler{ed: ed, dataDir: dataDir, multiLight: multiLight, remote: remote}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name       string   `json:"name" doc:"Service name"`
	Version    string   `json:"version" doc:"Service version"`
	DataDir    string   `json:"data_dir" doc:"Data directory path"`
	BaseStyle  string   `json:"base_style" doc:"Current base style"`
	Revision   uint64   `json:"revision" doc:"Document revision, bumped on every change"`
	Versions   int      `json:"versions" doc:"Saved versions in history"`
	MultiLight bool     `json:"multi_light" doc:"Whether the renderer supports the multi-light model"`
	Remote     bool     `json:"remote_styles" doc:"Whether base styles are fetched from the Mapbox Styles API"`
	Features   []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:       "plat-style",
		Version:    "0.1.0",
		DataDir:    h.dataDir,
		BaseStyle:  h.ed.Settings().BaseStyle,
		Revision:   h.ed.Revision(),
		Versions:   len(h.ed.Versions()),
		MultiLight: h.multiLight,
		Remote:     h.remote,
		Features:   []string{"presets", "versions", "bundles", "geojson", "csv", "url-import", "samples"},
	}}, nil
}
