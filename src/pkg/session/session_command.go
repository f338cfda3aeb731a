package session

import (
	"context"
	"errors"
	"fmt"

	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
)

// SessionCommand wraps the model.Command and adds session-specific functionality
type SessionCommand struct {
	model.Command
	logger *log.Logger
}

// NewSessionCommand creates a new SessionCommand from a model.Command
func NewSessionCommand(cmd model.Command, logger *log.Logger) SessionCommand {
	return SessionCommand{Command: cmd, logger: logger}
}

// Validate checks the scope, the operation and the argument count.
// Argument values are checked by the handlers.
func (c *SessionCommand) Validate() error {
	ctx := context.Background()
	c.logger.Debug(ctx, "Validating command", log.Fields{"scope": c.Scope, "operation": c.Operation})

	if c.Scope == "" {
		return errors.New("command scope is required")
	}
	if c.Operation == "" {
		return errors.New("command operation is required")
	}

	var err error
	switch c.Scope {
	case "node":
		err = c.validateNodeCommand()
	case "tree":
		err = c.validateTreeCommand()
	case "display":
		err = c.validateDisplayCommand()
	case "system":
		err = c.validateSystemCommand()
	default:
		err = fmt.Errorf("invalid command scope: %s", c.Scope)
	}
	if err != nil {
		c.logger.Warn(ctx, "Invalid command", log.Fields{"scope": c.Scope, "operation": c.Operation, "argCount": len(c.Args), "error": err.Error()})
	}
	return err
}

func (c *SessionCommand) validateNodeCommand() error {
	switch c.Operation {
	case "add":
		if len(c.Args) > 1 {
			return errors.New("node add command accepts at most 1 argument: [parent_id]")
		}
	case "remove", "duplicate", "up", "down", "deselect":
		if len(c.Args) != 0 {
			return fmt.Errorf("node %s command does not accept any arguments", c.Operation)
		}
	case "update":
		if len(c.Args) < 1 {
			return errors.New("node update command requires at least 1 argument: <key>=<value>...")
		}
	case "move":
		if len(c.Args) != 2 {
			return errors.New("node move command requires 2 arguments: <dragged_id> <target_id>")
		}
	case "select", "drag":
		if len(c.Args) != 1 {
			return fmt.Errorf("node %s command requires 1 argument: <id>", c.Operation)
		}
	case "drop":
		if len(c.Args) > 1 {
			return errors.New("node drop command accepts at most 1 argument: [target_id]")
		}
	default:
		return fmt.Errorf("invalid node operation: %s", c.Operation)
	}
	return nil
}

func (c *SessionCommand) validateTreeCommand() error {
	switch c.Operation {
	case "export", "import":
		if len(c.Args) < 1 || len(c.Args) > 2 {
			return fmt.Errorf("tree %s command requires 1 or 2 arguments: <filename> [json|xml|yaml]", c.Operation)
		}
	case "save", "load", "check", "undo", "redo":
		if len(c.Args) != 0 {
			return fmt.Errorf("tree %s command does not accept any arguments", c.Operation)
		}
	case "view":
		if len(c.Args) > 1 {
			return errors.New("tree view command accepts at most 1 argument: [--id]")
		}
	default:
		return fmt.Errorf("invalid tree operation: %s", c.Operation)
	}
	return nil
}

func (c *SessionCommand) validateDisplayCommand() error {
	switch c.Operation {
	case "list":
		if len(c.Args) != 0 {
			return errors.New("display list command does not accept any arguments")
		}
	case "show", "hide":
		if len(c.Args) != 1 {
			return fmt.Errorf("display %s command requires 1 argument: <attribute>", c.Operation)
		}
	default:
		return fmt.Errorf("invalid display operation: %s", c.Operation)
	}
	return nil
}

func (c *SessionCommand) validateSystemCommand() error {
	switch c.Operation {
	case "exit", "quit":
		if len(c.Args) != 0 {
			return fmt.Errorf("system %s command does not accept any arguments", c.Operation)
		}
	default:
		return fmt.Errorf("invalid system operation: %s", c.Operation)
	}
	return nil
}
