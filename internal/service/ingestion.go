package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-style/internal/ingest"
	"github.com/joeblew999/plat-style/internal/style"
)

// ImportFeatures adds fc as a new GeoJSON source and a layer styled by the
// first feature's geometry. The id is "<prefix>-<unix ms>". Nothing is left
// behind when the renderer rejects the layer.
func (e *Editor) ImportFeatures(prefix string, fc *geojson.FeatureCollection) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var id string
	err := e.run("import_data", func() error {
		doc := e.Document()
		id = ingest.NewID(prefix, e.now(), func(id string) bool {
			_, src := doc.Sources[id]
			return src || doc.HasLayer(id)
		})
		src, layer, err := ingest.Plan(fc, id)
		if err != nil {
			return err
		}

		if err := e.r.AddSource(id, src); err != nil {
			return rendererError("import data", err)
		}
		if err := e.r.AddLayer(layer); err != nil {
			if rerr := e.r.RemoveSource(id); rerr != nil {
				e.log.Error("removing orphaned source failed", "source", id, "error", rerr)
			}
			return rendererError("import data", err)
		}
		e.refresh()
		v := e.saveVersion("Imported data: " + id)
		e.log.Info("data imported", "op", "import_data", "layer", id, "type", layer.Type, "features", len(fc.Features), "version", v.ID)
		e.publish("layers", "created", id)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ImportGeoJSON ingests pasted GeoJSON text.
func (e *Editor) ImportGeoJSON(data []byte) (string, error) {
	fc, err := ingest.ParseGeoJSON(data)
	if err != nil {
		return "", err
	}
	return e.ImportFeatures(ingest.PrefixGeoJSON, fc)
}

// ImportSample ingests one of the built-in sample data sets.
func (e *Editor) ImportSample(kind string) (string, error) {
	fc, prefix, err := ingest.Sample(kind)
	if err != nil {
		return "", err
	}
	return e.ImportFeatures(prefix, fc)
}

// ImportCSV ingests comma-separated rows with latitude and longitude columns.
func (e *Editor) ImportCSV(r io.Reader) (string, error) {
	fc, err := ingest.FromCSV(r)
	if err != nil {
		return "", err
	}
	return e.ImportFeatures(ingest.PrefixCSV, fc)
}

// ImportFile ingests an uploaded .geojson, .json or .csv file.
func (e *Editor) ImportFile(filename string, data []byte) (string, error) {
	format, ok := ingest.FormatOf(filename)
	if !ok {
		return "", style.Errorf(style.KindInvalidDocument, "import file", "%q: expected .geojson, .json or .csv", filepath.Base(filename))
	}
	fc, err := parseFormat(format, data)
	if err != nil {
		return "", err
	}
	return e.ImportFeatures(ingest.PrefixFile, fc)
}

// ImportURL fetches GeoJSON from url. The document is untouched unless the
// response arrives and parses.
func (e *Editor) ImportURL(ctx context.Context, url string) (string, error) {
	var data []byte
	err := e.run("fetch_url", func() (err error) {
		data, err = e.fetcher.FetchJSON(ctx, url)
		return err
	})
	if err != nil {
		return "", err
	}
	fc, err := ingest.ParseGeoJSON(data)
	if err != nil {
		return "", err
	}
	return e.ImportFeatures(ingest.PrefixURL, fc)
}

// ImportSourceFile ingests a file from the local source catalog.
func (e *Editor) ImportSourceFile(name string) (string, error) {
	if e.catalog == nil {
		return "", style.Errorf(style.KindInvalidDocument, "import source file", "no source catalog configured")
	}
	data, format, err := e.catalog.Open(name)
	if err != nil {
		return "", err
	}
	fc, err := parseFormat(format, data)
	if err != nil {
		return "", err
	}
	prefix := "file-" + strings.TrimSuffix(strings.ToLower(name), strings.ToLower(filepath.Ext(name)))
	return e.ImportFeatures(prefix, fc)
}

func parseFormat(format string, data []byte) (*geojson.FeatureCollection, error) {
	if format == ingest.FormatCSV {
		return ingest.FromCSV(bytes.NewReader(data))
	}
	return ingest.ParseGeoJSON(data)
}
