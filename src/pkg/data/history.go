// This file contains the implementation of the history system for undo and redo operations.
package data

import (
	"fmt"

	"powertree/local-app/src/pkg/tree"
)

// OperationType names a kind of tree change.
type OperationType string

const (
	OpAdd       OperationType = "add"
	OpDelete    OperationType = "remove"
	OpDuplicate OperationType = "duplicate"
	OpMoveUp    OperationType = "move_up"
	OpMoveDown  OperationType = "move_down"
	OpMove      OperationType = "reparent"
	OpUpdate    OperationType = "update"
	OpImport    OperationType = "import"
	OpQuickLoad OperationType = "quick_load"
	OpUndo      OperationType = "undo"
	OpRedo      OperationType = "redo"
)

// Operation records one applied change as whole-tree snapshots taken
// before and after it. Snapshots are never mutated once recorded.
type Operation struct {
	Type   OperationType
	NodeID int
	Before *tree.Tree
	After  *tree.Tree
}

// HistoryManager manages the history of operations for undo and redo functionality.
type HistoryManager struct {
	history      []Operation
	historyIndex int
	limit        int
}

// NewHistoryManager creates a new HistoryManager keeping at most limit
// operations. A limit of 0 disables history.
func NewHistoryManager(limit int) *HistoryManager {
	return &HistoryManager{
		history:      []Operation{},
		historyIndex: -1,
		limit:        limit,
	}
}

// HistoryAdd adds a new operation to the history, discarding anything
// that could still have been redone.
func (hm *HistoryManager) HistoryAdd(op Operation) {
	if hm.limit == 0 {
		return
	}
	hm.history = append(hm.history[:hm.historyIndex+1], op)
	if len(hm.history) > hm.limit {
		drop := len(hm.history) - hm.limit
		hm.history = append([]Operation(nil), hm.history[drop:]...)
	}
	hm.historyIndex = len(hm.history) - 1
}

// GetLastOperation returns the last operation in the history.
func (hm *HistoryManager) GetLastOperation() (*Operation, error) {
	if hm.historyIndex < 0 {
		return nil, fmt.Errorf("no operations to undo")
	}
	return &hm.history[hm.historyIndex], nil
}

// GetNextOperation returns the next operation in the history for redo.
func (hm *HistoryManager) GetNextOperation() (*Operation, error) {
	if hm.historyIndex >= len(hm.history)-1 {
		return nil, fmt.Errorf("no operations to redo")
	}
	return &hm.history[hm.historyIndex+1], nil
}

// RemoveLastOperation steps back over the last operation.
func (hm *HistoryManager) RemoveLastOperation() {
	if hm.historyIndex >= 0 {
		hm.historyIndex--
	}
}

// MoveToNextOperation moves the history index to the next operation.
func (hm *HistoryManager) MoveToNextOperation() {
	if hm.historyIndex < len(hm.history)-1 {
		hm.historyIndex++
	}
}

// Len returns the number of recorded operations, undone ones included.
func (hm *HistoryManager) Len() int {
	return len(hm.history)
}
