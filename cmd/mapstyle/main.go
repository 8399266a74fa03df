package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-style/internal/server"
	"github.com/joeblew999/plat-style/internal/settings"
)

// Options defines all CLI flags and env vars for the style server.
// Flags: --host, --port, --data-dir, --base-style, --mapbox-token, --load-timeout
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_BASE_STYLE,
// SERVICE_MAPBOX_TOKEN, SERVICE_LOAD_TIMEOUT
type Options struct {
	Host        string `doc:"Host to bind to" default:"0.0.0.0"`
	Port        int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir     string `doc:"Directory holding sources/ for data import" default:".data"`
	BaseStyle   string `doc:"Initial base style name or mapbox:// URL" default:"standard"`
	MapboxToken string `doc:"Mapbox access token; without it an embedded offline base style is used"`
	LoadTimeout int    `doc:"Seconds to wait for a style to finish loading" default:"10"`
}

func newServer(opts *Options, logger *slog.Logger) (*server.Server, error) {
	return server.New(context.Background(), server.Config{
		Host:        opts.Host,
		Port:        fmt.Sprintf("%d", opts.Port),
		DataDir:     opts.DataDir,
		BaseStyle:   opts.BaseStyle,
		MapboxToken: opts.MapboxToken,
		LoadTimeout: time.Duration(opts.LoadTimeout) * time.Second,
		Logger:      logger,
	})
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		hooks.OnStart(func() {
			srv, err := newServer(opts, logger)
			if err != nil {
				log.Fatalf("Startup error: %v", err)
			}
			defer srv.Close()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)
			styles := "embedded (offline)"
			if opts.MapboxToken != "" {
				styles = "Mapbox Styles API"
			}

			fmt.Println()
			fmt.Printf("plat-style editor server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Printf("  Styles:  %s, base %q\n", styles, opts.BaseStyle)
			fmt.Println()
			fmt.Printf("  Events:  %s/api/v1/editor/events\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})
	})

	cli.Root().Use = "mapstyle"
	cli.Root().Short = "Map style editor: presets, version history and data import"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			offline := *opts
			offline.MapboxToken = ""
			srv, err := newServer(&offline, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// presets subcommand: print the lookup tables behind the named settings
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Print base styles, light presets, color themes, visibility categories and road groups as YAML",
		Run: func(cmd *cobra.Command, args []string) {
			output, err := yaml.Marshal(settings.AllTables())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling presets: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(string(output))
		},
	}
	cli.Root().AddCommand(presetsCmd)

	cli.Run()
}
