package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
)

const (
	defaultCleanupInterval = 5 * time.Minute
	defaultSessionTimeout  = 30 * time.Minute
)

// SessionManager owns the sessions and runs every command of every
// session, one at a time, on a single executor goroutine.
type SessionManager struct {
	sessions       map[string]*Session
	mu             sync.RWMutex
	dataManager    *data.DataManager
	sessionTimeout time.Duration
	cleanupTicker  *time.Ticker
	done           chan struct{}
	stopOnce       sync.Once
	commandQueue   chan commandExecution
	logger         *log.Logger
}

// commandExecution represents a command to be executed in a session and
// the channel its outcome is delivered on
type commandExecution struct {
	ctx     context.Context
	session *Session
	command model.Command
	reply   chan commandReply
}

type commandReply struct {
	result interface{}
	err    error
}

// NewSessionManager starts the command execution and cleanup goroutines
func NewSessionManager(dataManager *data.DataManager, logger *log.Logger) *SessionManager {
	ctx := context.Background()
	logger.Info(ctx, "Creating new SessionManager", nil)

	timeout := defaultSessionTimeout
	if minutes := dataManager.Config.SessionTimeout; minutes > 0 {
		timeout = time.Duration(minutes) * time.Minute
	}

	sm := &SessionManager{
		sessions:       make(map[string]*Session),
		dataManager:    dataManager,
		sessionTimeout: timeout,
		done:           make(chan struct{}),
		commandQueue:   make(chan commandExecution),
		logger:         logger,
	}
	sm.startCleanupRoutine()
	go sm.commandExecutor()

	logger.Info(ctx, "SessionManager created successfully", log.Fields{"sessionTimeout": timeout.String()})
	return sm
}

// SessionAdd creates a new session with a fresh document and returns its ID
func (sm *SessionManager) SessionAdd() (string, error) {
	ctx := context.Background()

	id, err := uuid.NewRandom()
	if err != nil {
		sm.logger.Error(ctx, "Failed to generate session ID", log.Fields{"error": err.Error()})
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	sessionID := id.String()

	s := NewSession(sessionID, sm.dataManager.DocumentAdd(), sm.logger)

	sm.mu.Lock()
	sm.sessions[sessionID] = s
	sm.mu.Unlock()
	sm.dataManager.Metrics.SessionsActive.Inc()

	sm.logger.Info(ctx, "New session added", log.Fields{"sessionID": sessionID})
	return sessionID, nil
}

// SessionGet retrieves a session by its ID
func (sm *SessionManager) SessionGet(sessionID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, exists := sm.sessions[sessionID]
	return s, exists
}

// SessionPin exempts a session from idle cleanup
func (sm *SessionManager) SessionPin(sessionID string) error {
	s, exists := sm.SessionGet(sessionID)
	if !exists {
		return errors.New("session not found")
	}
	s.Pin()
	return nil
}

// SessionDelete removes a session
func (sm *SessionManager) SessionDelete(sessionID string) {
	ctx := context.Background()

	sm.mu.Lock()
	_, exists := sm.sessions[sessionID]
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if !exists {
		sm.logger.Warn(ctx, "Attempted to delete non-existent session", log.Fields{"sessionID": sessionID})
		return
	}
	sm.dataManager.Metrics.SessionsActive.Dec()
	sm.logger.Info(ctx, "Session deleted", log.Fields{"sessionID": sessionID})
}

// SessionRun queues a command for a session and waits for its outcome
func (sm *SessionManager) SessionRun(ctx context.Context, sessionID string, cmd model.Command) (interface{}, error) {
	session, exists := sm.SessionGet(sessionID)
	if !exists {
		sm.logger.Error(ctx, "Session not found", log.Fields{"sessionID": sessionID})
		return nil, errors.New("session not found")
	}

	// Log command in command log
	sm.logger.Command(ctx, "Command received", log.Fields{
		"sessionID": sessionID,
		"scope":     cmd.Scope,
		"operation": cmd.Operation,
		"args":      cmd.Args,
	})

	select {
	case <-sm.done:
		return nil, errors.New("session manager stopped")
	default:
	}

	reply := make(chan commandReply, 1)
	select {
	case sm.commandQueue <- commandExecution{ctx: ctx, session: session, command: cmd, reply: reply}:
	case <-sm.done:
		return nil, errors.New("session manager stopped")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r := <-reply
	sm.dataManager.Metrics.RecordCommand(cmd.Scope, r.err)
	return r.result, r.err
}

// commandExecutor processes commands from the queue
func (sm *SessionManager) commandExecutor() {
	ctx := context.Background()
	sm.logger.Info(ctx, "Starting command executor", nil)

	for {
		select {
		case exec := <-sm.commandQueue:
			result, err := exec.session.CommandRun(exec.ctx, exec.command)
			exec.reply <- commandReply{result: result, err: err}
		case <-sm.done:
			sm.logger.Info(ctx, "Stopping command executor", nil)
			return
		}
	}
}

// startCleanupRoutine starts a goroutine that periodically cleans up inactive sessions
func (sm *SessionManager) startCleanupRoutine() {
	sm.cleanupTicker = time.NewTicker(defaultCleanupInterval)
	go func() {
		for {
			select {
			case <-sm.cleanupTicker.C:
				sm.cleanupInactiveSessions(time.Now())
			case <-sm.done:
				sm.cleanupTicker.Stop()
				return
			}
		}
	}()
}

// Stop stops the executor and the cleanup routine. Commands queued after
// Stop fail.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() {
		sm.logger.Info(context.Background(), "Stopping session manager", nil)
		close(sm.done)
	})
}

// cleanupInactiveSessions removes unpinned sessions idle for longer than
// the session timeout
func (sm *SessionManager) cleanupInactiveSessions(now time.Time) {
	sm.mu.RLock()
	var expired []string
	for id, s := range sm.sessions {
		if !s.Pinned() && now.Sub(s.LastActivity()) > sm.sessionTimeout {
			expired = append(expired, id)
		}
	}
	sm.mu.RUnlock()

	for _, id := range expired {
		sm.logger.Info(context.Background(), "Removing inactive session", log.Fields{"sessionID": id})
		sm.SessionDelete(id)
	}
}
