package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"powertree/local-app/src/pkg/event"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/tree"
)

var errNoSelection = fmt.Errorf("%w: no node selected", tree.ErrInvalidOperation)

// TreeChange is the payload of TreeChanged and TreeReplaced events.
type TreeChange struct {
	Operation OperationType
	NodeID    int
	Nodes     int
}

// Document is one editing session over a power tree. It owns the tree,
// the selection, the global display toggles, the drag state and the undo
// history. A Document is not safe for concurrent use.
type Document struct {
	tree     *tree.Tree
	selected int
	display  *DisplaySettings
	history  *HistoryManager
	drag     dragState
	events   *event.EventManager
	manager  *DataManager
	logger   *log.Logger
}

func newDocument(m *DataManager) *Document {
	root := model.NodeInfo{
		Name:           m.Config.RootName,
		Color:          m.Config.RootColor,
		DisplayOptions: model.DefaultDisplayOptions(),
	}
	return &Document{
		tree:    tree.New(root),
		display: NewDisplaySettings(),
		history: NewHistoryManager(m.Config.HistoryLimit),
		events:  event.NewEventManager(m.Logger),
		manager: m,
		logger:  m.Logger,
	}
}

// Events returns the event manager observers subscribe to.
func (d *Document) Events() *event.EventManager {
	return d.events
}

// Root returns the root node. Callers must not modify it.
func (d *Document) Root() *model.Node {
	return d.tree.Root()
}

// Node looks a node up by id. Callers must not modify it.
func (d *Document) Node(id int) (*model.Node, bool) {
	return d.tree.Node(id)
}

// NodeCount returns the number of nodes in the tree.
func (d *Document) NodeCount() int {
	return d.tree.Len()
}

// Selected returns the selected node, if any.
func (d *Document) Selected() (*model.Node, bool) {
	if d.selected == 0 {
		return nil, false
	}
	return d.tree.Node(d.selected)
}

// Check verifies every tree invariant, aggregation included.
func (d *Document) Check() error {
	return d.tree.Check()
}

// CanUndo reports whether an operation is available to undo.
func (d *Document) CanUndo() bool {
	_, err := d.history.GetLastOperation()
	return err == nil
}

// CanRedo reports whether an undone operation is available to redo.
func (d *Document) CanRedo() bool {
	_, err := d.history.GetNextOperation()
	return err == nil
}

// mutate runs change against the tree. A refused change leaves the tree
// exactly as it was and is reported as not applied. An applied change is
// recomputed, recorded in history and announced before mutate returns.
func (d *Document) mutate(op OperationType, change func() (int, error)) (int, bool) {
	before := d.tree.Clone()
	selected := d.selected

	nodeID, err := change()
	if err != nil {
		d.manager.Metrics.RecordMutation(string(op), false)
		if errors.Is(err, tree.ErrInvalidOperation) {
			// The store refuses these before touching anything.
			d.logger.Debug(context.Background(), "Mutation ignored", log.Fields{"operation": string(op), "reason": err.Error()})
		} else {
			d.tree = before
			d.selected = selected
			d.logger.Error(context.Background(), "Mutation failed", log.Fields{"operation": string(op), "error": err.Error()})
		}
		return 0, false
	}

	d.recompute()
	d.history.HistoryAdd(Operation{
		Type:   op,
		NodeID: nodeID,
		Before: before,
		After:  d.tree.Clone(),
	})
	d.manager.Metrics.RecordMutation(string(op), true)
	d.logger.Debug(context.Background(), "Mutation applied", log.Fields{"operation": string(op), "nodeID": nodeID})

	d.events.Publish(event.Event{
		Type: event.TreeChanged,
		Data: TreeChange{Operation: op, NodeID: nodeID, Nodes: d.tree.Len()},
	})
	return nodeID, true
}

func (d *Document) recompute() {
	start := time.Now()
	d.tree.Recompute()
	d.manager.Metrics.RecordRecompute(d.tree.Len(), time.Since(start))
}

// replaceTree swaps in a whole new tree. The selection survives only if
// keepSelection is set and the node still exists.
func (d *Document) replaceTree(t *tree.Tree, op OperationType, keepSelection bool) {
	d.tree = t
	d.drag = dragState{}

	if d.selected != 0 {
		if _, ok := t.Node(d.selected); !ok || !keepSelection {
			d.setSelection(0)
		}
	}

	d.events.Publish(event.Event{
		Type: event.TreeReplaced,
		Data: TreeChange{Operation: op, NodeID: t.Root().ID, Nodes: t.Len()},
	})
}

func (d *Document) setSelection(id int) {
	if d.selected == id {
		return
	}
	d.selected = id
	d.events.Publish(event.Event{Type: event.SelectionChanged, Data: id})
}

// Undo restores the tree as it was before the last recorded operation.
func (d *Document) Undo() bool {
	op, err := d.history.GetLastOperation()
	if err != nil {
		return false
	}
	d.history.RemoveLastOperation()
	d.replaceTree(op.Before.Clone(), OpUndo, true)
	d.manager.Metrics.RecordMutation(string(OpUndo), true)
	return true
}

// Redo reapplies the last undone operation.
func (d *Document) Redo() bool {
	op, err := d.history.GetNextOperation()
	if err != nil {
		return false
	}
	d.history.MoveToNextOperation()
	d.replaceTree(op.After.Clone(), OpRedo, true)
	d.manager.Metrics.RecordMutation(string(OpRedo), true)
	return true
}
