package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joeblew999/plat-style/internal/style"
)

// Source file formats.
const (
	FormatGeoJSON = "GeoJSON"
	FormatCSV     = "CSV"
)

var extToFormat = map[string]string{
	".geojson": FormatGeoJSON,
	".json":    FormatGeoJSON,
	".csv":     FormatCSV,
}

// SourceFile is an ingestible file in the data directory.
type SourceFile struct {
	Name     string `json:"name" doc:"File name" example:"stations.csv"`
	Size     string `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	FileType string `json:"fileType" doc:"File type: GeoJSON or CSV" example:"CSV"`
}

// Catalog lists and opens source files under <dataDir>/sources.
type Catalog struct {
	sourcesDir string
}

// NewCatalog creates a catalog rooted at dataDir.
func NewCatalog(dataDir string) *Catalog {
	return &Catalog{
		sourcesDir: filepath.Join(dataDir, "sources"),
	}
}

// List returns the supported files, sorted by name. A missing directory is
// an empty list.
func (c *Catalog) List() ([]SourceFile, error) {
	entries, err := os.ReadDir(c.sourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SourceFile{}, nil
		}
		return nil, err
	}

	files := []SourceFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, ok := FormatOf(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, SourceFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			FileType: format,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Open reads a source file by base name and reports its format.
func (c *Catalog) Open(name string) ([]byte, string, error) {
	const op = "open source"

	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, "", style.Errorf(style.KindInvalidDocument, op, "invalid source name %q", name)
	}
	format, ok := FormatOf(name)
	if !ok {
		return nil, "", style.Errorf(style.KindInvalidDocument, op, "unsupported source file %q", name)
	}
	data, err := os.ReadFile(filepath.Join(c.sourcesDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", style.Errorf(style.KindInvalidDocument, op, "no source file %q", name)
		}
		return nil, "", style.Wrap(style.KindInvalidDocument, op, err)
	}
	return data, format, nil
}

// Dir returns the path to the sources directory.
func (c *Catalog) Dir() string {
	return c.sourcesDir
}

// FormatOf maps a file name onto its ingest format.
func FormatOf(name string) (string, bool) {
	format, ok := extToFormat[strings.ToLower(filepath.Ext(name))]
	return format, ok
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
