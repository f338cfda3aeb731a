package session

import (
	"context"
	"strings"

	"powertree/local-app/src/pkg/model"
)

// initDisplayCommandHandlers initializes display command handlers
func initDisplayCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"list": handleDisplayList,
		"show": handleDisplayToggle,
		"hide": handleDisplayToggle,
	}
}

func handleDisplayList(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	return DisplayResult{Attributes: s.Document.DisplayAttributes()}, nil
}

func handleDisplayToggle(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	visible := cmd.Operation == "show"
	if err := s.Document.SetAttributeVisible(strings.ToLower(cmd.Args[0]), visible); err != nil {
		return nil, err
	}
	return DisplayResult{Attributes: s.Document.DisplayAttributes()}, nil
}
