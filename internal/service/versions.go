package service

import (
	"context"

	"github.com/joeblew999/plat-style/internal/bundle"
	"github.com/joeblew999/plat-style/internal/history"
	"github.com/joeblew999/plat-style/internal/settings"
	"github.com/joeblew999/plat-style/internal/style"
)

// ManualSaveName labels versions saved without a name.
const ManualSaveName = "Manual Save"

// SaveVersion snapshots the current document under name.
func (e *Editor) SaveVersion(name string) history.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" {
		name = ManualSaveName
	}
	var v history.Version
	_ = e.run("save_version", func() error {
		v = e.saveVersion(name)
		return nil
	})
	e.log.Info("version saved", "op", "save_version", "version", v.ID, "name", name)
	e.publish("versions", "created", v.ID)
	return history.Summary{ID: v.ID, Name: v.Name, Timestamp: v.Timestamp, Latest: true}
}

// RestoreVersion replaces the live document with a saved snapshot, keeping
// the camera. Restoring does not record a version.
func (e *Editor) RestoreVersion(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("restore_version", func() error {
		v, err := e.history.Get(id)
		if err != nil {
			return err
		}
		view := e.r.Viewport()
		if _, err := e.replaceAndWait(ctx, v.Snapshot); err != nil {
			return err
		}
		e.r.SetViewport(view)
		e.refresh()
		e.log.Info("version restored", "op", "restore_version", "version", id, "name", v.Name)
		e.publish("versions", "restored", id)
		return nil
	})
}

// ExportVersion returns a saved snapshot as a bare style document.
func (e *Editor) ExportVersion(id string) ([]byte, error) {
	v, err := e.history.Get(id)
	if err != nil {
		return nil, err
	}
	return bundle.EncodeDocument(v.Snapshot)
}

// Export returns the current document and settings as a bundle.
func (e *Editor) Export() ([]byte, error) {
	e.state.RLock()
	doc, s := e.doc.Clone(), e.settings.Clone()
	e.state.RUnlock()

	data, err := bundle.Encode(doc, s)
	if err != nil {
		return nil, style.Wrap(style.KindInvalidDocument, "export", err)
	}
	return data, nil
}

// Import loads a bundle or bare document. The input is fully validated
// before anything changes. The imported document takes over completely,
// camera included, and an "Imported" version is recorded.
func (e *Editor) Import(ctx context.Context, filename string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run("import", func() error {
		if err := bundle.CheckExtension(filename); err != nil {
			return err
		}
		b, err := bundle.Decode(data)
		if err != nil {
			return err
		}
		if _, err := e.replaceAndWait(ctx, b.Style); err != nil {
			return err
		}
		if b.GlobalSettings != nil {
			gs := b.GlobalSettings.Clone()
			e.updateSettings(func(s *settings.Settings) { *s = gs })
		}
		e.refresh()
		v := e.saveVersion("Imported: " + filename)
		e.log.Info("style imported", "op", "import", "file", filename, "bundle", b.GlobalSettings != nil, "version", v.ID)
		e.publish("style", "imported", filename)
		return nil
	})
}
