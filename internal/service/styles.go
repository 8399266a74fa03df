package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/joeblew999/plat-style/internal/ingest"
	"github.com/joeblew999/plat-style/internal/settings"
	"github.com/joeblew999/plat-style/internal/style"
)

// StyleSource resolves a base style to the document it loads.
type StyleSource interface {
	Load(ctx context.Context, base settings.BaseStyle) (style.Document, error)
}

//go:embed basestyle.json
var baseStyleJSON []byte

// offlineBackgrounds tints the offline document per base style.
var offlineBackgrounds = map[string]string{
	"dark":              "#1a1a1a",
	"satellite":         "#2b3a2b",
	"satellite-streets": "#2b3a2b",
	"outdoors":          "#eef0e2",
	"light":             "#fafafa",
}

// StaticStyles serves an embedded base document for every base style. The
// sprite URL identifies which base style it stands for.
type StaticStyles struct{}

// Load returns the embedded document stamped for base.
func (StaticStyles) Load(_ context.Context, base settings.BaseStyle) (style.Document, error) {
	var doc style.Document
	if err := json.Unmarshal(baseStyleJSON, &doc); err != nil {
		return style.Document{}, style.Wrap(style.KindInvalidDocument, "load base style", err)
	}
	doc.Name = base.Name
	doc.Sprite = strings.Replace(base.URL, "mapbox://styles/", "mapbox://sprites/", 1)
	if bg, ok := offlineBackgrounds[base.Name]; ok {
		if l, found := doc.Layer("background"); found {
			l.Paint["background-color"] = bg
		}
	}
	return doc, nil
}

// MapboxStylesURL is the Styles API endpoint.
const MapboxStylesURL = "https://api.mapbox.com/styles/v1/"

// MapboxStyles fetches base styles from the Mapbox Styles API.
type MapboxStyles struct {
	Token   string
	BaseURL string
	Fetcher *ingest.Fetcher
}

// NewMapboxStyles creates a Styles API client using token.
func NewMapboxStyles(token string, fetcher *ingest.Fetcher) *MapboxStyles {
	if fetcher == nil {
		fetcher = ingest.NewFetcher(nil)
	}
	return &MapboxStyles{Token: token, BaseURL: MapboxStylesURL, Fetcher: fetcher}
}

// Load fetches base and conforms it to the supported layer vocabulary.
func (m *MapboxStyles) Load(ctx context.Context, base settings.BaseStyle) (style.Document, error) {
	path := strings.TrimPrefix(base.URL, "mapbox://styles/")
	if path == base.URL {
		return style.Document{}, style.Errorf(style.KindInvalidSetting, "load base style", "%q is not a mapbox style URL", base.URL)
	}
	u := fmt.Sprintf("%s%s?access_token=%s", m.BaseURL, path, url.QueryEscape(m.Token))

	data, err := m.Fetcher.FetchJSON(ctx, u)
	if err != nil {
		return style.Document{}, err
	}
	var doc style.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return style.Document{}, style.Wrap(style.KindFetchFailure, "load base style", err)
	}
	Conform(&doc)
	return doc, nil
}

// Conform drops layers of unsupported types and properties outside the
// closed vocabulary, so a third-party style validates.
func Conform(doc *style.Document) {
	if doc.Sources == nil {
		doc.Sources = map[string]style.Source{}
	}
	for id, src := range doc.Sources {
		if src.Type == "" {
			delete(doc.Sources, id)
		}
	}

	layers := doc.Layers[:0]
	for _, l := range doc.Layers {
		if !l.Type.Valid() {
			continue
		}
		if l.Source != "" {
			if _, ok := doc.Sources[l.Source]; !ok {
				continue
			}
		}
		for name := range l.Paint {
			if style.CheckProperty(l.Type, style.Paint, name) != nil {
				delete(l.Paint, name)
			}
		}
		for name := range l.Layout {
			if style.CheckProperty(l.Type, style.Layout, name) != nil {
				delete(l.Layout, name)
			}
		}
		layers = append(layers, l)
	}
	doc.Layers = layers
}
