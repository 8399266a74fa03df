package ingest

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-style/internal/style"
)

// Sample data sets offered for trying the editor without a file.
const (
	SamplePoints = "points"
	SampleLine   = "line"
)

// Sample returns a sample feature collection and the id prefix its layer
// is created under.
func Sample(kind string) (*geojson.FeatureCollection, string, error) {
	fc := geojson.NewFeatureCollection()
	switch kind {
	case SamplePoints:
		f := geojson.NewFeature(orb.Point{-74.5, 40})
		f.Properties["name"] = "Sample Point"
		f.Properties["description"] = "This is a sample point"
		fc.Append(f)
		return fc, PrefixSample, nil
	case SampleLine:
		f := geojson.NewFeature(orb.LineString{{-74.5, 40}, {-74.4, 40.1}, {-74.3, 40.05}})
		f.Properties["name"] = "Sample Line"
		fc.Append(f)
		return fc, PrefixSample + "-line", nil
	}
	return nil, "", style.Errorf(style.KindInvalidDocument, "sample", "unknown sample %q", kind)
}
