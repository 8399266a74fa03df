package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joeblew999/plat-style/internal/api"
	"github.com/joeblew999/plat-style/internal/api/editor"
	"github.com/joeblew999/plat-style/internal/ingest"
	"github.com/joeblew999/plat-style/internal/renderer"
	"github.com/joeblew999/plat-style/internal/service"
)

// Config holds the server configuration.
type Config struct {
	Host        string
	Port        string
	DataDir     string
	BaseStyle   string        // initial base style name or URL
	MapboxToken string        // fetch base styles from the Styles API when set
	LoadTimeout time.Duration // wait for a replaced style to load
	Logger      *slog.Logger
	// Renderer defaults to an in-process renderer.Memory.
	Renderer renderer.Adapter
}

// Server is the style editor HTTP server.
type Server struct {
	config  Config
	mux     *http.ServeMux
	humaAPI huma.API
	editor  *service.Editor
	log     *slog.Logger
}

// New creates the server and loads the initial base style.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = renderer.NewMemory()
	}

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-style API", "1.0.0")
	humaConfig.Info.Description = "Map style editor API: layer properties, presets, version history, bundles and data import."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	fetcher := ingest.NewFetcher(nil)
	var styles service.StyleSource = service.StaticStyles{}
	if cfg.MapboxToken != "" {
		styles = service.NewMapboxStyles(cfg.MapboxToken, fetcher)
	}
	var catalog *ingest.Catalog
	if cfg.DataDir != "" {
		catalog = ingest.NewCatalog(cfg.DataDir)
	}

	ed, err := service.New(service.Config{
		Renderer:    cfg.Renderer,
		Styles:      styles,
		Fetcher:     fetcher,
		Catalog:     catalog,
		Logger:      cfg.Logger,
		LoadTimeout: cfg.LoadTimeout,
		BaseStyle:   cfg.BaseStyle,
	})
	if err != nil {
		return nil, err
	}
	if err := ed.Init(ctx); err != nil {
		ed.Close()
		return nil, fmt.Errorf("load initial style: %w", err)
	}

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
		editor:  ed,
		log:     cfg.Logger,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Editor returns the style editor the routes operate on.
func (s *Server) Editor() *service.Editor {
	return s.editor
}

// Close detaches the editor from its renderer.
func (s *Server) Close() error {
	s.editor.Close()
	return nil
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.editor)

	remote := s.config.MapboxToken != ""
	api.NewInfoHandler(s.editor, s.config.DataDir, s.config.Renderer.Capabilities().MultiLight, remote).RegisterRoutes(s.humaAPI)

	// Editor SSE routes using Huma + Datastar SDK
	editor.NewEventHandler(s.editor).RegisterRoutes(s.humaAPI)
	editor.NewSettingsHandler(s.editor).RegisterRoutes(s.humaAPI)

	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-style",
		"status":  "running",
		"docs":    "/docs",
	}); err != nil {
		s.log.Warn("writing root response failed", "error", err)
	}
}
