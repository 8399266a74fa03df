// Package ingest turns external data (GeoJSON feature collections, CSV rows
// with coordinate columns, remote URLs, local source files) into a new
// source and a styled layer ready to add to a style document.
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-style/internal/style"
)

// FromCSV converts comma-separated rows into point features. The header row
// must name a latitude column (containing "lat") and a longitude column
// (containing "lng" or "lon"), matched case-insensitively. Other columns
// become string properties. Rows whose coordinates do not parse to finite
// numbers are dropped.
func FromCSV(r io.Reader) (*geojson.FeatureCollection, error) {
	const op = "csv"

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, style.Errorf(style.KindMissingCoordinateColumns, op, "empty input, no header row")
	}
	if err != nil {
		return nil, style.Wrap(style.KindInvalidDocument, op, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	latIdx, lngIdx := coordinateColumns(header)
	if latIdx < 0 || lngIdx < 0 {
		return nil, style.Errorf(style.KindMissingCoordinateColumns, op,
			"header %q needs a latitude and a longitude column", strings.Join(header, ","))
	}

	fc := geojson.NewFeatureCollection()
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A malformed line is skipped like a row with bad coordinates.
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, style.Wrap(style.KindInvalidDocument, op, err)
		}

		lat, ok := parseCoord(row, latIdx)
		if !ok {
			continue
		}
		lng, ok := parseCoord(row, lngIdx)
		if !ok {
			continue
		}

		f := geojson.NewFeature(orb.Point{lng, lat})
		for i, name := range header {
			if i == latIdx || i == lngIdx || i >= len(row) {
				continue
			}
			f.Properties[name] = strings.TrimSpace(row[i])
		}
		fc.Append(f)
	}
	return fc, nil
}

func coordinateColumns(header []string) (lat, lng int) {
	lat, lng = -1, -1
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), "lat") {
			lat = i
			break
		}
	}
	for i, h := range header {
		if i == lat {
			continue
		}
		lh := strings.ToLower(h)
		if strings.Contains(lh, "lng") || strings.Contains(lh, "lon") {
			lng = i
			break
		}
	}
	return lat, lng
}

func parseCoord(row []string, idx int) (float64, bool) {
	if idx >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
