// Package adapter connects front ends to the session manager. Each
// adapter instance owns one or more sessions and turns its own input into
// model.Command values.
package adapter

import (
	"context"
	"fmt"
	"sync"

	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/session"
)

// AdapterInstance represents an instance of an adapter
type AdapterInstance interface {
	// AdapterStart starts the adapter instance
	AdapterStart() error

	// AdapterStop terminates the adapter instance and releases its sessions
	AdapterStop() error

	// GetType returns the type of the adapter
	GetType() string
}

// AdapterManager manages all adapter instances
type AdapterManager struct {
	instances      sync.Map // map[string]AdapterInstance
	sessionManager *session.SessionManager
	logger         *log.Logger
}

// NewAdapterManager creates a new AdapterManager
func NewAdapterManager(sm *session.SessionManager, logger *log.Logger) (*AdapterManager, error) {
	if sm == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logger.Info(context.Background(), "Adapter manager created", nil)
	return &AdapterManager{
		sessionManager: sm,
		logger:         logger,
	}, nil
}

// AdapterAdd starts an adapter instance and registers it under its type
func (am *AdapterManager) AdapterAdd(instance AdapterInstance) error {
	adapterType := instance.GetType()
	if _, loaded := am.instances.LoadOrStore(adapterType, instance); loaded {
		return fmt.Errorf("adapter already registered: %s", adapterType)
	}
	if err := instance.AdapterStart(); err != nil {
		am.instances.Delete(adapterType)
		return fmt.Errorf("failed to start %s adapter: %w", adapterType, err)
	}
	am.logger.Info(context.Background(), "Adapter added", log.Fields{"type": adapterType})
	return nil
}

// SessionAdd creates a new session
func (am *AdapterManager) SessionAdd() (string, error) {
	sessionID, err := am.sessionManager.SessionAdd()
	if err != nil {
		return "", fmt.Errorf("failed to add session: %w", err)
	}
	return sessionID, nil
}

// SessionPin keeps a session alive while an adapter holds it
func (am *AdapterManager) SessionPin(sessionID string) error {
	return am.sessionManager.SessionPin(sessionID)
}

// SessionGet retrieves a session
func (am *AdapterManager) SessionGet(sessionID string) (*session.Session, bool) {
	return am.sessionManager.SessionGet(sessionID)
}

// SessionDelete removes a session
func (am *AdapterManager) SessionDelete(sessionID string) {
	am.sessionManager.SessionDelete(sessionID)
}

// CommandRun runs a command in a session
func (am *AdapterManager) CommandRun(ctx context.Context, sessionID string, cmd model.Command) (interface{}, error) {
	return am.sessionManager.SessionRun(ctx, sessionID, cmd)
}

// Shutdown stops all adapter instances
func (am *AdapterManager) Shutdown() {
	am.instances.Range(func(key, value interface{}) bool {
		instance := value.(AdapterInstance)
		if err := instance.AdapterStop(); err != nil {
			am.logger.Error(context.Background(), "Failed to stop adapter", log.Fields{"type": key, "error": err.Error()})
		}
		am.instances.Delete(key)
		return true
	})
}
