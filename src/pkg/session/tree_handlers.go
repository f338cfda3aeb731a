package session

import (
	"context"
	"fmt"
	"strings"

	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/storage"
)

// initTreeCommandHandlers initializes tree command handlers
func initTreeCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"export": handleTreeExport,
		"import": handleTreeImport,
		"save":   handleTreeSave,
		"load":   handleTreeLoad,
		"view":   handleTreeView,
		"check":  handleTreeCheck,
		"undo":   handleTreeUndo,
		"redo":   handleTreeRedo,
	}
}

// fileArgs extracts the filename and the optional format of export and
// import.
func fileArgs(cmd model.Command) (string, string, error) {
	filename := cmd.Args[0]
	format := ""
	if len(cmd.Args) > 1 {
		format = strings.ToLower(cmd.Args[1])
		if !storage.ValidFormat(format) {
			return "", "", fmt.Errorf("unsupported format: %s (expected json, xml or yaml)", cmd.Args[1])
		}
	}
	return filename, format, nil
}

func handleTreeExport(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	filename, format, err := fileArgs(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.Document.ExportFile(filename, format); err != nil {
		return nil, fmt.Errorf("failed to export tree: %w", err)
	}
	return fmt.Sprintf("Tree exported to %s", filename), nil
}

func handleTreeImport(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	filename, format, err := fileArgs(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.Document.ImportFile(filename, format); err != nil {
		return nil, fmt.Errorf("failed to import tree: %w", err)
	}
	return fmt.Sprintf("Tree imported from %s (%d nodes)", filename, s.Document.NodeCount()), nil
}

func handleTreeSave(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	if err := s.Document.QuickSave(ctx); err != nil {
		return nil, fmt.Errorf("failed to save tree: %w", err)
	}
	return "Tree saved", nil
}

func handleTreeLoad(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	status, err := s.Document.QuickLoad(ctx)
	s.logger.Info(ctx, "Quick load finished", log.Fields{"status": status.String()})
	switch status {
	case model.QuickLoadSuccess:
		return fmt.Sprintf("Tree loaded (%d nodes)", s.Document.NodeCount()), nil
	case model.QuickLoadEmpty:
		return Notice("No saved tree found"), nil
	case model.QuickLoadCorrupt:
		return Notice("Saved tree is corrupt, tree left unchanged"), nil
	default:
		return nil, fmt.Errorf("failed to load tree: %w", err)
	}
}

func handleTreeView(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	showIDs := false
	if len(cmd.Args) == 1 {
		if cmd.Args[0] != "--id" {
			return nil, fmt.Errorf("unknown tree view option: %s", cmd.Args[0])
		}
		showIDs = true
	}
	return ViewResult{Root: s.Document.View(), ShowIDs: showIDs}, nil
}

func handleTreeCheck(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	if err := s.Document.Check(); err != nil {
		return nil, fmt.Errorf("tree check failed: %w", err)
	}
	return fmt.Sprintf("Tree is consistent (%d nodes)", s.Document.NodeCount()), nil
}

func handleTreeUndo(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	if !s.Document.Undo() {
		return Notice("Nothing to undo"), nil
	}
	return nil, nil
}

func handleTreeRedo(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	if !s.Document.Redo() {
		return Notice("Nothing to redo"), nil
	}
	return nil, nil
}
