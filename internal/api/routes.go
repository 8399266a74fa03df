// Package api defines the Huma API routes and handlers.
package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/bundle"
	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/ingest"
	"github.com/joeblew999/plat-style/internal/renderer"
	"github.com/joeblew999/plat-style/internal/service"
	"github.com/joeblew999/plat-style/internal/settings"
	"github.com/joeblew999/plat-style/internal/style"
)

// RegisterRoutes registers every REST operation over ed.
func RegisterRoutes(api huma.API, ed *service.Editor) {
	huma.AutoRegister(api, NewAPIHandler(ed))
}

// Types

type LayerIDInput struct {
	ID string `path:"id" doc:"Layer ID" example:"road-street"`
}

type VersionIDInput struct {
	ID string `path:"id" doc:"Version ID"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type MessageOutput struct {
	Body MessageBody
}

func message(format string, args ...any) *MessageOutput {
	return &MessageOutput{Body: MessageBody{Message: fmt.Sprintf(format, args...)}}
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type LayerSummary struct {
	ID      string          `json:"id" doc:"Layer ID"`
	Type    style.LayerType `json:"type" doc:"Layer type"`
	Source  string          `json:"source,omitempty" doc:"Source ID"`
	Visible bool            `json:"visible" doc:"Whether the layer is shown"`
	User    bool            `json:"user" doc:"Created in the editor rather than by the base style"`
}

type AllowedPropertiesBody struct {
	Paint  []string `json:"paint" doc:"Paint properties legal for the layer"`
	Layout []string `json:"layout" doc:"Layout properties legal for the layer"`
}

type PropertyInput struct {
	ID        string `path:"id" doc:"Layer ID" example:"road-street"`
	Namespace string `path:"namespace" enum:"paint,layout" doc:"Property namespace"`
	Name      string `path:"name" doc:"Property name" example:"line-color"`
	Body      struct {
		Value      any    `json:"value,omitempty" doc:"Literal value or expression array; null resets to the renderer default"`
		Expression string `json:"expression,omitempty" doc:"JSON text of a value or expression, used instead of value" example:"[\"interpolate\",[\"linear\"],[\"zoom\"],5,1,15,4]"`
	}
}

type AddLayerInput struct {
	Body struct {
		Type string `json:"type" enum:"fill,line,circle,symbol,raster,background" doc:"Layer type"`
	}
}

type ToggleBody struct {
	Visible bool `json:"visible" doc:"Visibility after the toggle"`
}

type LightPresetInput struct {
	Body struct {
		Preset string `json:"preset" enum:"day,night,dawn,dusk" doc:"Light preset"`
	}
}

type ColorThemeInput struct {
	Body struct {
		Theme string `json:"theme" enum:"default,monochrome,night" doc:"Color theme"`
	}
}

type RoadColorInput struct {
	Group string `path:"group" enum:"trunk-roads,motorway-roads,other-roads" doc:"Road group"`
	Body  struct {
		Color string `json:"color" pattern:"^#[0-9a-fA-F]{6}$" doc:"Road color" example:"#ff9500"`
	}
}

type VisibilityInput struct {
	Category string `path:"category" doc:"Visibility category" example:"poi-labels"`
	Body     struct {
		Visible bool `json:"visible" doc:"Show or hide the category"`
	}
}

type BaseStyleInput struct {
	Body struct {
		Style string `json:"style" doc:"Base style name or mapbox:// style URL" example:"dark"`
	}
}

type SaveVersionInput struct {
	Body struct {
		Name string `json:"name,omitempty" doc:"Version name; defaults to \"Manual Save\"" example:"Before theme change"`
	}
}

type FileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func attachment(name string, data []byte) *FileOutput {
	return &FileOutput{
		ContentType:        "application/json",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", name),
		Body:               data,
	}
}

type ImportInput struct {
	Filename string `query:"filename" default:"mapfi-style.mfc" doc:"Name of the uploaded file; .mfc or .json"`
	RawBody  []byte `contentType:"application/json"`
}

type GeoJSONInput struct {
	RawBody []byte `contentType:"application/geo+json"`
}

type CSVInput struct {
	RawBody []byte `contentType:"text/csv"`
}

type FileUploadInput struct {
	Filename string `query:"filename" required:"true" doc:"Uploaded file name; .geojson, .json or .csv" example:"stations.csv"`
	RawBody  []byte
}

type URLInput struct {
	Body struct {
		URL string `json:"url" format:"uri" doc:"URL of a GeoJSON document" example:"https://example.com/stations.geojson"`
	}
}

type SampleInput struct {
	Kind string `path:"kind" enum:"points,line" doc:"Sample data set"`
}

type SourceNameInput struct {
	Name string `path:"name" doc:"Source file name" example:"stations.csv"`
}

type ImportedBody struct {
	ID      string `json:"id" doc:"ID of the new source and layer"`
	Message string `json:"message" doc:"Result message"`
}

type ImportedOutput struct {
	Body ImportedBody
}

func imported(id string, err error) (*ImportedOutput, error) {
	if err != nil {
		return nil, httpError(err)
	}
	return &ImportedOutput{Body: ImportedBody{ID: id, Message: "Data imported"}}, nil
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	ed *service.Editor
}

func NewAPIHandler(ed *service.Editor) *APIHandler {
	return &APIHandler{ed: ed}
}

func created(o *huma.Operation) { o.DefaultStatus = http.StatusCreated }

// rawUpload hands the request body to the handler unvalidated. A []byte
// body is published as a string schema; the handler decodes and validates.
func rawUpload(o *huma.Operation) { o.SkipValidateBody = true }

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterStyle registers document, viewport and bundle routes.
func (h *APIHandler) RegisterStyle(api huma.API) {
	huma.Get(api, "/api/v1/style", h.GetStyle, huma.OperationTags("style"))
	huma.Get(api, "/api/v1/export", h.Export, huma.OperationTags("style"))
	huma.Post(api, "/api/v1/import", h.Import, huma.OperationTags("style"), rawUpload)
	huma.Get(api, "/api/v1/viewport", h.GetViewport, huma.OperationTags("style"))
	huma.Put(api, "/api/v1/viewport", h.PutViewport, huma.OperationTags("style"))
	huma.Post(api, "/api/v1/viewport/toggle-3d", h.Toggle3D, huma.OperationTags("style"))
}

// RegisterLayers registers layer routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers", h.AddLayer, huma.OperationTags("layers"), created)
	huma.Delete(api, "/api/v1/layers/{id}", h.RemoveLayer, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{id}/properties", h.GetAllowedProperties, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/layers/{id}/{namespace}/{name}", h.PutProperty, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers/{id}/toggle-visibility", h.ToggleVisibility, huma.OperationTags("layers"))
}

// RegisterSettings registers the named-settings routes.
func (h *APIHandler) RegisterSettings(api huma.API) {
	huma.Get(api, "/api/v1/settings", h.GetSettings, huma.OperationTags("settings"))
	huma.Get(api, "/api/v1/presets", h.GetPresets, huma.OperationTags("settings"))
	huma.Put(api, "/api/v1/settings/light-preset", h.PutLightPreset, huma.OperationTags("settings"))
	huma.Put(api, "/api/v1/settings/color-theme", h.PutColorTheme, huma.OperationTags("settings"))
	huma.Put(api, "/api/v1/settings/road-colors/{group}", h.PutRoadColor, huma.OperationTags("settings"))
	huma.Put(api, "/api/v1/settings/visibility/{category}", h.PutVisibility, huma.OperationTags("settings"))
	huma.Put(api, "/api/v1/settings/base-style", h.PutBaseStyle, huma.OperationTags("settings"))
}

// RegisterVersions registers version history routes.
func (h *APIHandler) RegisterVersions(api huma.API) {
	huma.Get(api, "/api/v1/versions", h.GetVersions, huma.OperationTags("versions"))
	huma.Post(api, "/api/v1/versions", h.SaveVersion, huma.OperationTags("versions"), created)
	huma.Post(api, "/api/v1/versions/{id}/restore", h.RestoreVersion, huma.OperationTags("versions"))
	huma.Get(api, "/api/v1/versions/{id}/export", h.ExportVersion, huma.OperationTags("versions"))
}

// RegisterData registers data ingestion routes.
func (h *APIHandler) RegisterData(api huma.API) {
	huma.Post(api, "/api/v1/data/geojson", h.ImportGeoJSON, huma.OperationTags("data"), created, rawUpload)
	huma.Post(api, "/api/v1/data/csv", h.ImportCSV, huma.OperationTags("data"), created)
	huma.Post(api, "/api/v1/data/url", h.ImportURL, huma.OperationTags("data"), created)
	huma.Post(api, "/api/v1/data/files", h.ImportFile, huma.OperationTags("data"), created, rawUpload)
	huma.Post(api, "/api/v1/data/samples/{kind}", h.ImportSample, huma.OperationTags("data"), created)
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("data"))
	huma.Post(api, "/api/v1/sources/{name}/import", h.ImportSource, huma.OperationTags("data"), created)
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *struct{}) (*struct{ Body style.Document }, error) {
	return &struct{ Body style.Document }{Body: h.ed.Document()}, nil
}

func (h *APIHandler) Export(ctx context.Context, input *struct{}) (*FileOutput, error) {
	data, err := h.ed.Export()
	if err != nil {
		return nil, httpError(err)
	}
	return attachment(bundle.DefaultFilename, data), nil
}

func (h *APIHandler) Import(ctx context.Context, input *ImportInput) (*MessageOutput, error) {
	if err := h.ed.Import(ctx, input.Filename, input.RawBody); err != nil {
		return nil, httpError(err)
	}
	return message("Imported %s", input.Filename), nil
}

func (h *APIHandler) GetViewport(ctx context.Context, input *struct{}) (*struct{ Body renderer.Viewport }, error) {
	return &struct{ Body renderer.Viewport }{Body: h.ed.Viewport()}, nil
}

func (h *APIHandler) PutViewport(ctx context.Context, input *struct{ Body renderer.Viewport }) (*struct{ Body renderer.Viewport }, error) {
	h.ed.SetViewport(input.Body)
	return &struct{ Body renderer.Viewport }{Body: h.ed.Viewport()}, nil
}

func (h *APIHandler) Toggle3D(ctx context.Context, input *struct{}) (*struct{ Body renderer.Viewport }, error) {
	h.ed.Toggle3D()
	return &struct{ Body renderer.Viewport }{Body: h.ed.Viewport()}, nil
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*struct{ Body []LayerSummary }, error) {
	doc := h.ed.Document()
	layers := make([]LayerSummary, 0, len(doc.Layers))
	for _, l := range doc.Layers {
		layers = append(layers, LayerSummary{
			ID:      l.ID,
			Type:    l.Type,
			Source:  l.Source,
			Visible: l.Visible(),
			User:    style.IsUserLayer(l.ID),
		})
	}
	return &struct{ Body []LayerSummary }{Body: layers}, nil
}

func (h *APIHandler) AddLayer(ctx context.Context, input *AddLayerInput) (*struct{ Body style.Layer }, error) {
	layer, err := h.ed.AddLayer(style.LayerType(input.Body.Type))
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body style.Layer }{Body: layer}, nil
}

func (h *APIHandler) RemoveLayer(ctx context.Context, input *LayerIDInput) (*MessageOutput, error) {
	if err := h.ed.RemoveLayer(input.ID); err != nil {
		return nil, httpError(err)
	}
	return message("Layer %s removed", input.ID), nil
}

func (h *APIHandler) GetAllowedProperties(ctx context.Context, input *LayerIDInput) (*struct{ Body AllowedPropertiesBody }, error) {
	paint, layout, err := h.ed.AllowedProperties(input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body AllowedPropertiesBody }{Body: AllowedPropertiesBody{Paint: paint, Layout: layout}}, nil
}

func (h *APIHandler) PutProperty(ctx context.Context, input *PropertyInput) (*MessageOutput, error) {
	ns, err := style.ParseNamespace(input.Namespace)
	if err != nil {
		return nil, httpError(err)
	}
	if input.Body.Expression != "" {
		err = h.ed.ApplyExpression(input.ID, ns, input.Name, input.Body.Expression)
	} else {
		err = h.ed.ApplyProperty(input.ID, ns, input.Name, input.Body.Value)
	}
	if err != nil {
		return nil, httpError(err)
	}
	return message("%s.%s updated on %s", ns, input.Name, input.ID), nil
}

func (h *APIHandler) ToggleVisibility(ctx context.Context, input *LayerIDInput) (*struct{ Body ToggleBody }, error) {
	visible, err := h.ed.ToggleLayerVisibility(input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body ToggleBody }{Body: ToggleBody{Visible: visible}}, nil
}

func (h *APIHandler) GetSettings(ctx context.Context, input *struct{}) (*struct{ Body settings.Settings }, error) {
	return &struct{ Body settings.Settings }{Body: h.ed.Settings()}, nil
}

func (h *APIHandler) GetPresets(ctx context.Context, input *struct{}) (*struct{ Body settings.Tables }, error) {
	return &struct{ Body settings.Tables }{Body: settings.AllTables()}, nil
}

func (h *APIHandler) settingsResult(err error) (*struct{ Body settings.Settings }, error) {
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body settings.Settings }{Body: h.ed.Settings()}, nil
}

func (h *APIHandler) PutLightPreset(ctx context.Context, input *LightPresetInput) (*struct{ Body settings.Settings }, error) {
	return h.settingsResult(h.ed.ApplyLightPreset(settings.LightPreset(input.Body.Preset)))
}

func (h *APIHandler) PutColorTheme(ctx context.Context, input *ColorThemeInput) (*struct{ Body settings.Settings }, error) {
	return h.settingsResult(h.ed.ApplyColorTheme(settings.ColorTheme(input.Body.Theme)))
}

func (h *APIHandler) PutRoadColor(ctx context.Context, input *RoadColorInput) (*struct{ Body settings.Settings }, error) {
	return h.settingsResult(h.ed.SetRoadColor(input.Group, input.Body.Color))
}

func (h *APIHandler) PutVisibility(ctx context.Context, input *VisibilityInput) (*struct{ Body settings.Settings }, error) {
	return h.settingsResult(h.ed.SetVisibility(input.Category, input.Body.Visible))
}

func (h *APIHandler) PutBaseStyle(ctx context.Context, input *BaseStyleInput) (*struct{ Body settings.Settings }, error) {
	return h.settingsResult(h.ed.SwitchBaseStyle(ctx, input.Body.Style))
}

func (h *APIHandler) GetVersions(ctx context.Context, input *struct{}) (*struct{ Body []history.Summary }, error) {
	return &struct{ Body []history.Summary }{Body: h.ed.Versions()}, nil
}

func (h *APIHandler) SaveVersion(ctx context.Context, input *SaveVersionInput) (*struct{ Body history.Summary }, error) {
	return &struct{ Body history.Summary }{Body: h.ed.SaveVersion(input.Body.Name)}, nil
}

func (h *APIHandler) RestoreVersion(ctx context.Context, input *VersionIDInput) (*MessageOutput, error) {
	if err := h.ed.RestoreVersion(ctx, input.ID); err != nil {
		return nil, httpError(err)
	}
	return message("Version %s restored", input.ID), nil
}

func (h *APIHandler) ExportVersion(ctx context.Context, input *VersionIDInput) (*FileOutput, error) {
	data, err := h.ed.ExportVersion(input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return attachment("mapfi-style-"+input.ID+".json", data), nil
}

func (h *APIHandler) ImportGeoJSON(ctx context.Context, input *GeoJSONInput) (*ImportedOutput, error) {
	return imported(h.ed.ImportGeoJSON(input.RawBody))
}

func (h *APIHandler) ImportCSV(ctx context.Context, input *CSVInput) (*ImportedOutput, error) {
	return imported(h.ed.ImportCSV(bytes.NewReader(input.RawBody)))
}

func (h *APIHandler) ImportURL(ctx context.Context, input *URLInput) (*ImportedOutput, error) {
	return imported(h.ed.ImportURL(ctx, input.Body.URL))
}

func (h *APIHandler) ImportFile(ctx context.Context, input *FileUploadInput) (*ImportedOutput, error) {
	return imported(h.ed.ImportFile(input.Filename, input.RawBody))
}

func (h *APIHandler) ImportSample(ctx context.Context, input *SampleInput) (*ImportedOutput, error) {
	return imported(h.ed.ImportSample(input.Kind))
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*struct{ Body []ingest.SourceFile }, error) {
	catalog := h.ed.Catalog()
	if catalog == nil {
		return &struct{ Body []ingest.SourceFile }{Body: []ingest.SourceFile{}}, nil
	}
	sources, err := catalog.List()
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body []ingest.SourceFile }{Body: sources}, nil
}

func (h *APIHandler) ImportSource(ctx context.Context, input *SourceNameInput) (*ImportedOutput, error) {
	return imported(h.ed.ImportSourceFile(input.Name))
}
