package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
)

// ErrExit is returned by the system exit command.
var ErrExit = errors.New("exit requested")

// CommandHandler is a function type for command handlers
type CommandHandler func(context.Context, *Session, model.Command) (interface{}, error)

// Session represents an individual editing session over one document
type Session struct {
	ID              string
	Document        *data.Document
	lastActivity    atomic.Int64
	pinned          atomic.Bool
	commandHandlers map[string]map[string]CommandHandler
	logger          *log.Logger
}

// NewSession creates a new Session instance
func NewSession(id string, doc *data.Document, logger *log.Logger) *Session {
	ctx := context.Background()
	logger.Info(ctx, "Creating new Session", log.Fields{"sessionID": id})

	s := &Session{
		ID:       id,
		Document: doc,
		logger:   logger,
	}
	s.touch()
	s.initCommandHandlers()

	logger.Info(ctx, "New Session created successfully", log.Fields{"sessionID": id})
	return s
}

// LastActivity returns when the session last ran a command.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// Pin keeps the session alive regardless of idle time. Front ends pin the
// sessions they hold open.
func (s *Session) Pin() {
	s.pinned.Store(true)
}

// Pinned reports whether idle cleanup skips the session.
func (s *Session) Pinned() bool {
	return s.pinned.Load()
}

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// initCommandHandlers initializes the command handlers map
func (s *Session) initCommandHandlers() {
	s.logger.Debug(context.Background(), "Initializing command handlers", nil)

	s.commandHandlers = map[string]map[string]CommandHandler{
		"node":    initNodeCommandHandlers(),
		"tree":    initTreeCommandHandlers(),
		"display": initDisplayCommandHandlers(),
		"system":  initSystemCommandHandlers(),
	}
}

// CommandRun validates and executes a command within the session context
func (s *Session) CommandRun(ctx context.Context, cmd model.Command) (interface{}, error) {
	s.logger.Info(ctx, "Running command", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation})
	s.touch()

	sc := NewSessionCommand(cmd, s.logger)
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	scopeHandlers, ok := s.commandHandlers[cmd.Scope]
	if !ok {
		return nil, fmt.Errorf("invalid command scope: %s", cmd.Scope)
	}
	handler, ok := scopeHandlers[cmd.Operation]
	if !ok {
		return nil, fmt.Errorf("invalid %s operation: %s", cmd.Scope, cmd.Operation)
	}

	result, err := handler(ctx, s, cmd)
	if err != nil && !errors.Is(err, ErrExit) {
		s.logger.Error(ctx, "Command execution failed", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation, "error": err.Error()})
	} else {
		s.logger.Debug(ctx, "Command executed successfully", nil)
	}
	return result, err
}

// initSystemCommandHandlers initializes system command handlers
func initSystemCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"exit": handleSystemExit,
		"quit": handleSystemExit,
	}
}

func handleSystemExit(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.logger.Info(ctx, "Exit requested", log.Fields{"sessionID": s.ID})
	return nil, ErrExit
}
