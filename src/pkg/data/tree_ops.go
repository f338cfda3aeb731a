package data

import (
	"context"
	"errors"
	"fmt"

	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/storage"
	"powertree/local-app/src/pkg/tree"
)

// Persistence statuses reported to metrics.
const (
	statusOK         = "ok"
	statusError      = "error"
	statusParseError = "parse_error"
	statusEmpty      = "empty"
	statusCorrupt    = "corrupt"
)

func (d *Document) defaultFormat() string {
	if d.manager.Config.ExportFormat != "" {
		return d.manager.Config.ExportFormat
	}
	return storage.FormatJSON
}

// Export serializes the whole tree, derived fields included.
func (d *Document) Export(format string) ([]byte, error) {
	if format == "" {
		format = d.defaultFormat()
	}
	data, err := storage.Serialize(d.tree.Root(), format)
	if err != nil {
		d.manager.Metrics.RecordPersistence("export", statusError, 0)
		return nil, fmt.Errorf("failed to export tree: %w", err)
	}
	d.manager.Metrics.RecordPersistence("export", statusOK, len(data))
	return data, nil
}

// ExportFile writes the tree to filename. An empty format is taken from
// the file extension.
func (d *Document) ExportFile(filename, format string) error {
	if format == "" {
		format = storage.FormatFromFilename(filename, d.defaultFormat())
	}
	if err := storage.FileExport(d.tree.Root(), filename, format); err != nil {
		d.manager.Metrics.RecordPersistence("export", statusError, 0)
		return err
	}
	d.manager.Metrics.RecordPersistence("export", statusOK, 0)
	d.logger.Info(context.Background(), "Tree exported", log.Fields{"file": filename, "format": format, "nodes": d.tree.Len()})
	return nil
}

// Import replaces the tree with the one described by data. On error the
// current tree is left untouched.
func (d *Document) Import(data []byte, format string) error {
	if format == "" {
		format = d.defaultFormat()
	}
	root, err := storage.Deserialize(data, format)
	if err != nil {
		d.recordImportFailure("import", err)
		return err
	}
	if err := d.adopt(root, OpImport); err != nil {
		d.manager.Metrics.RecordPersistence("import", statusError, 0)
		return err
	}
	d.manager.Metrics.RecordPersistence("import", statusOK, len(data))
	return nil
}

// ImportFile replaces the tree with the one stored in filename.
func (d *Document) ImportFile(filename, format string) error {
	if format == "" {
		format = storage.FormatFromFilename(filename, d.defaultFormat())
	}
	root, err := storage.FileImport(filename, format)
	if err != nil {
		d.recordImportFailure("import", err)
		return err
	}
	if err := d.adopt(root, OpImport); err != nil {
		d.manager.Metrics.RecordPersistence("import", statusError, 0)
		return err
	}
	d.manager.Metrics.RecordPersistence("import", statusOK, 0)
	d.logger.Info(context.Background(), "Tree imported", log.Fields{"file": filename, "format": format, "nodes": d.tree.Len()})
	return nil
}

func (d *Document) recordImportFailure(operation string, err error) {
	var perr *storage.ParseError
	if errors.As(err, &perr) {
		d.manager.Metrics.RecordPersistence(operation, statusParseError, 0)
		return
	}
	d.manager.Metrics.RecordPersistence(operation, statusError, 0)
}

// adopt installs a freshly deserialized node graph as the document tree.
// The replacement is recorded in history and clears the selection.
func (d *Document) adopt(root *model.Node, op OperationType) error {
	t, err := tree.FromRoot(root)
	if err != nil {
		return fmt.Errorf("failed to adopt imported tree: %w", err)
	}

	d.history.HistoryAdd(Operation{
		Type:   op,
		NodeID: t.Root().ID,
		Before: d.tree,
		After:  t.Clone(),
	})
	d.replaceTree(t, op, false)
	return nil
}

// QuickSave stores the tree in the quick-cache slot, replacing whatever
// it held.
func (d *Document) QuickSave(ctx context.Context) error {
	data, err := storage.Serialize(d.tree.Root(), storage.FormatJSON)
	if err != nil {
		d.manager.Metrics.RecordPersistence("quick_save", statusError, 0)
		return fmt.Errorf("failed to serialize tree: %w", err)
	}
	if err := d.manager.Cache.CacheSave(ctx, d.manager.Config.CacheSlot, data); err != nil {
		d.manager.Metrics.RecordPersistence("quick_save", statusError, 0)
		return err
	}
	d.manager.Metrics.RecordPersistence("quick_save", statusOK, len(data))
	d.logger.Info(ctx, "Tree saved to quick cache", log.Fields{"slot": d.manager.Config.CacheSlot, "bytes": len(data)})
	return nil
}

// QuickLoad replaces the tree with the content of the quick-cache slot.
// An empty or corrupt slot is reported through the status and leaves the
// tree unchanged; the error is only set when the slot could not be read.
func (d *Document) QuickLoad(ctx context.Context) (model.QuickLoadStatus, error) {
	slot := d.manager.Config.CacheSlot
	payload, err := d.manager.Cache.CacheLoad(ctx, slot)
	switch {
	case errors.Is(err, storage.ErrCacheEmpty):
		d.manager.Metrics.RecordPersistence("quick_load", statusEmpty, 0)
		return model.QuickLoadEmpty, nil
	case errors.Is(err, storage.ErrCacheCorrupt):
		d.manager.Metrics.RecordPersistence("quick_load", statusCorrupt, 0)
		d.logger.Warn(ctx, "Quick cache slot is corrupt", log.Fields{"slot": slot, "error": err.Error()})
		return model.QuickLoadCorrupt, nil
	case err != nil:
		d.manager.Metrics.RecordPersistence("quick_load", statusError, 0)
		return model.QuickLoadFailed, err
	}

	root, err := storage.Deserialize(payload, storage.FormatJSON)
	if err == nil {
		err = d.adopt(root, OpQuickLoad)
	}
	if err != nil {
		d.manager.Metrics.RecordPersistence("quick_load", statusCorrupt, 0)
		d.logger.Warn(ctx, "Quick cache slot holds an unreadable tree", log.Fields{"slot": slot, "error": err.Error()})
		return model.QuickLoadCorrupt, nil
	}

	d.manager.Metrics.RecordPersistence("quick_load", statusOK, len(payload))
	d.logger.Info(ctx, "Tree loaded from quick cache", log.Fields{"slot": slot, "nodes": d.tree.Len()})
	return model.QuickLoadSuccess, nil
}
