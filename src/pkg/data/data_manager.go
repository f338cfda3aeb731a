// Package data provides the editing engine of the powertree application.
// A DataManager holds what documents share (the quick cache, metrics,
// configuration); each Document owns one tree together with its
// selection, display toggles, drag state and history.
package data

import (
	"context"
	"fmt"

	"powertree/local-app/src/pkg/event"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/metrics"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/storage"
)

// DataManager is the main struct that coordinates all data operations
type DataManager struct {
	Cache   storage.CacheStore
	Metrics *metrics.Registry
	Config  *model.Config
	Logger  *log.Logger
}

// NewDataManager creates a new DataManager instance
func NewDataManager(cache storage.CacheStore, cfg *model.Config, registry *metrics.Registry, logger *log.Logger) (*DataManager, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	logger.Info(context.Background(), "DataManager created", log.Fields{"cacheSlot": cfg.CacheSlot})
	return &DataManager{
		Cache:   cache,
		Metrics: registry,
		Config:  cfg,
		Logger:  logger,
	}, nil
}

// DocumentAdd creates a new document holding a fresh tree.
func (m *DataManager) DocumentAdd() *Document {
	doc := newDocument(m)

	// Record wholesale replacements in the info log
	doc.events.Subscribe(event.TreeReplaced, m.handleTreeReplaced)

	m.Logger.Info(context.Background(), "Document created", log.Fields{"rootID": doc.tree.Root().ID})
	return doc
}

func (m *DataManager) handleTreeReplaced(e event.Event) {
	change, ok := e.Data.(TreeChange)
	if !ok {
		return
	}
	m.Logger.Info(context.Background(), "Tree replaced", log.Fields{
		"operation": string(change.Operation),
		"nodes":     change.Nodes,
	})
}
