package style

import (
	"fmt"
	"sort"
)

// LayerType is the geometry family a layer paints.
type LayerType string

const (
	TypeFill       LayerType = "fill"
	TypeLine       LayerType = "line"
	TypeCircle     LayerType = "circle"
	TypeSymbol     LayerType = "symbol"
	TypeRaster     LayerType = "raster"
	TypeBackground LayerType = "background"
)

// LayerTypes lists every supported layer type in display order.
var LayerTypes = []LayerType{TypeFill, TypeLine, TypeCircle, TypeSymbol, TypeRaster, TypeBackground}

// Valid reports whether t is one of the supported layer types.
func (t LayerType) Valid() bool {
	_, ok := propertyTable[t]
	return ok
}

// Namespace selects the paint or layout property map of a layer.
type Namespace string

const (
	Paint  Namespace = "paint"
	Layout Namespace = "layout"
)

// ParseNamespace converts a wire string into a Namespace.
func ParseNamespace(s string) (Namespace, error) {
	switch Namespace(s) {
	case Paint, Layout:
		return Namespace(s), nil
	}
	return "", fmt.Errorf("unknown namespace %q", s)
}

type propertySet map[string]struct{}

func setOf(names ...string) propertySet {
	s := make(propertySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// propertyTable is the closed (type, namespace) → property vocabulary,
// following the GL style specification including the v3 additions.
var propertyTable = map[LayerType]map[Namespace]propertySet{
	TypeFill: {
		Paint: setOf("fill-antialias", "fill-color", "fill-opacity", "fill-outline-color",
			"fill-pattern", "fill-translate", "fill-translate-anchor", "fill-emissive-strength",
			"fill-z-offset", "fill-bridge-guard-rail-color", "fill-tunnel-structure-color"),
		Layout: setOf("visibility", "fill-sort-key", "fill-elevation-reference", "fill-construct-bridge-guard-rail"),
	},
	TypeLine: {
		Paint: setOf("line-color", "line-width", "line-opacity", "line-blur", "line-dasharray",
			"line-gap-width", "line-offset", "line-pattern", "line-gradient", "line-translate",
			"line-translate-anchor", "line-emissive-strength", "line-border-color",
			"line-border-width", "line-occlusion-opacity", "line-depth-occlusion-factor",
			"line-trim-offset", "line-trim-color", "line-trim-fade-range"),
		Layout: setOf("visibility", "line-cap", "line-join", "line-miter-limit", "line-round-limit",
			"line-sort-key", "line-z-offset", "line-elevation-reference", "line-cross-slope",
			"line-width-unit"),
	},
	TypeCircle: {
		Paint: setOf("circle-color", "circle-radius", "circle-opacity", "circle-blur",
			"circle-stroke-color", "circle-stroke-width", "circle-stroke-opacity",
			"circle-translate", "circle-translate-anchor", "circle-pitch-scale",
			"circle-pitch-alignment", "circle-emissive-strength"),
		Layout: setOf("visibility", "circle-sort-key", "circle-elevation-reference"),
	},
	TypeSymbol: {
		Paint: setOf("text-color", "text-halo-color", "text-halo-width", "text-halo-blur",
			"text-opacity", "text-translate", "text-translate-anchor", "text-emissive-strength",
			"text-occlusion-opacity", "icon-color", "icon-halo-color", "icon-halo-width",
			"icon-halo-blur", "icon-opacity", "icon-translate", "icon-translate-anchor",
			"icon-emissive-strength", "icon-color-saturation", "icon-image-cross-fade",
			"icon-occlusion-opacity", "symbol-z-offset"),
		Layout: setOf("visibility", "symbol-placement", "symbol-spacing", "symbol-sort-key",
			"symbol-z-order", "symbol-avoid-edges", "symbol-z-elevate", "symbol-elevation-reference",
			"text-field", "text-font", "text-size", "text-anchor", "text-offset", "text-max-width",
			"text-transform", "text-allow-overlap", "text-ignore-placement", "text-optional",
			"text-letter-spacing", "text-line-height", "text-justify", "text-padding",
			"text-rotate", "text-rotation-alignment", "text-pitch-alignment", "text-keep-upright",
			"text-max-angle", "text-radial-offset", "text-variable-anchor", "text-writing-mode",
			"icon-image", "icon-size", "icon-anchor", "icon-offset", "icon-allow-overlap",
			"icon-ignore-placement", "icon-optional", "icon-padding", "icon-rotate",
			"icon-rotation-alignment", "icon-pitch-alignment", "icon-keep-upright",
			"icon-text-fit", "icon-text-fit-padding"),
	},
	TypeRaster: {
		Paint: setOf("raster-opacity", "raster-hue-rotate", "raster-brightness-min",
			"raster-brightness-max", "raster-saturation", "raster-contrast",
			"raster-fade-duration", "raster-resampling", "raster-color", "raster-color-mix",
			"raster-color-range", "raster-emissive-strength", "raster-array-band",
			"raster-elevation"),
		Layout: setOf("visibility"),
	},
	TypeBackground: {
		Paint: setOf("background-color", "background-opacity", "background-pattern",
			"background-emissive-strength"),
		Layout: setOf("visibility", "background-pitch-alignment"),
	},
}

// AllowedProperties returns the sorted property names legal for (t, ns).
func AllowedProperties(t LayerType, ns Namespace) []string {
	set := propertyTable[t][ns]
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CheckProperty fails with KindInvalidProperty when name is not legal for
// a layer of type t under ns.
func CheckProperty(t LayerType, ns Namespace, name string) error {
	byNS, ok := propertyTable[t]
	if !ok {
		return Errorf(KindInvalidProperty, "check property", "unsupported layer type %q", t)
	}
	set, ok := byNS[ns]
	if !ok {
		return Errorf(KindInvalidProperty, "check property", "unknown namespace %q", ns)
	}
	if _, ok := set[name]; !ok {
		return Errorf(KindInvalidProperty, "check property", "%s.%s is not valid for %s layers", ns, name, t)
	}
	return nil
}

// DefaultPaint returns the paint a freshly added layer of type t starts with.
func DefaultPaint(t LayerType) Properties {
	switch t {
	case TypeFill:
		return Properties{"fill-color": "#3b82f6", "fill-opacity": 0.6}
	case TypeLine:
		return Properties{"line-color": "#ef4444", "line-width": 2.0}
	case TypeCircle:
		return Properties{"circle-color": "#10b981", "circle-radius": 6.0}
	}
	return nil
}

// Patch is one (layer, namespace, property) write.
type Patch struct {
	LayerID   string
	Namespace Namespace
	Name      string
	Value     any
}
