package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/session"
)

// CLIAdapter provides command-line interface support for managing multiple CLI connections
type CLIAdapter struct {
	sessions       map[string]*session.Session
	sessionMutex   sync.RWMutex
	adapterManager *AdapterManager
	logger         *log.Logger
}

// NewCLIAdapter creates a new instance of CLIAdapter
func NewCLIAdapter(am *AdapterManager, logger *log.Logger) (*CLIAdapter, error) {
	logger.Info(context.Background(), "Creating new CLI adapter", nil)
	return &CLIAdapter{
		sessions:       make(map[string]*session.Session),
		adapterManager: am,
		logger:         logger,
	}, nil
}

// GetType returns the adapter type
func (a *CLIAdapter) GetType() string {
	return "cli"
}

// AdapterStart starts the CLI adapter
func (a *CLIAdapter) AdapterStart() error {
	a.logger.Info(context.Background(), "CLI adapter started", nil)
	return nil
}

// AdapterStop closes every session opened through the adapter
func (a *CLIAdapter) AdapterStop() error {
	ctx := context.Background()
	a.logger.Info(ctx, "CLI adapter stopping", nil)

	a.sessionMutex.Lock()
	for sessionID := range a.sessions {
		a.adapterManager.SessionDelete(sessionID)
		delete(a.sessions, sessionID)
	}
	a.sessionMutex.Unlock()

	a.logger.Info(ctx, "CLI adapter stopped", nil)
	return nil
}

// SessionAdd adds a new cli session
func (a *CLIAdapter) SessionAdd() (string, error) {
	sessionID, err := a.adapterManager.SessionAdd()
	if err != nil {
		return "", err
	}

	s, exists := a.adapterManager.SessionGet(sessionID)
	if !exists {
		a.logger.Error(context.Background(), "Session does not exist", log.Fields{"sessionID": sessionID})
		return "", fmt.Errorf("session %s does not exist after addition by cli adapter", sessionID)
	}
	// interactive sessions never expire
	if err := a.adapterManager.SessionPin(sessionID); err != nil {
		return "", fmt.Errorf("failed to pin cli session: %w", err)
	}

	a.sessionMutex.Lock()
	a.sessions[sessionID] = s
	a.sessionMutex.Unlock()
	a.logger.Info(context.Background(), "New CLI session added", log.Fields{"sessionID": sessionID})

	return sessionID, nil
}

// SessionDelete deletes a cli session
func (a *CLIAdapter) SessionDelete(sessionID string) {
	a.sessionMutex.Lock()
	delete(a.sessions, sessionID)
	a.sessionMutex.Unlock()
	a.adapterManager.SessionDelete(sessionID)
	a.logger.Info(context.Background(), "CLI session removed", log.Fields{"sessionID": sessionID})
}

// ProcessInput converts the input string into a command and runs it
func (a *CLIAdapter) ProcessInput(ctx context.Context, sessionID string, input string) (interface{}, error) {
	cmd, err := a.ParseCommand(input)
	if err != nil {
		return nil, err
	}
	return a.adapterManager.CommandRun(ctx, sessionID, cmd)
}

// ParseCommand splits a line into scope, operation and arguments.
// Scope and operation are case-insensitive.
func (a *CLIAdapter) ParseCommand(input string) (model.Command, error) {
	args := ParseArgs(input)
	if len(args) == 0 {
		return model.Command{}, fmt.Errorf("empty command")
	}

	cmd := model.Command{
		Scope: strings.ToLower(args[0]),
		Args:  []string{},
	}
	if len(args) > 1 {
		cmd.Operation = strings.ToLower(args[1])
		cmd.Args = args[2:]
	}

	a.logger.Debug(context.Background(), "Command parsed", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation, "args": cmd.Args})
	return cmd, nil
}

// ParseArgs splits input on spaces. Double quotes group words into one
// argument and are removed.
func ParseArgs(input string) []string {
	var args []string
	var currentArg strings.Builder
	inQuotes := false
	quoted := false

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case (char == ' ' || char == '\t') && !inQuotes:
			if currentArg.Len() > 0 || quoted {
				args = append(args, currentArg.String())
				currentArg.Reset()
			}
			quoted = false
		default:
			currentArg.WriteRune(char)
		}
	}

	if currentArg.Len() > 0 || quoted {
		args = append(args, currentArg.String())
	}
	return args
}

// PromptGet returns the prompt of the session: the selected node's name
// and id when a node is selected.
func (a *CLIAdapter) PromptGet(sessionID string) string {
	a.sessionMutex.RLock()
	s, exists := a.sessions[sessionID]
	a.sessionMutex.RUnlock()

	if !exists {
		a.logger.Warn(context.Background(), "Session not found", log.Fields{"sessionID": sessionID})
		return "> "
	}

	n, selected := s.Document.Selected()
	if !selected {
		return "> "
	}
	return fmt.Sprintf("%s [%d] > ", n.Name, n.ID)
}
