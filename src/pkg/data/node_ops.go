package data

import (
	"fmt"

	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/tree"
)

// AddNode creates a default node as the last child of parentID, or of the
// selection (the root when nothing is selected) when parentID is 0. The
// new node becomes the selection.
func (d *Document) AddNode(parentID int) (int, bool) {
	target := parentID
	if target == 0 {
		target = d.selected
	}
	if target == 0 {
		target = d.tree.Root().ID
	}

	id, ok := d.mutate(OpAdd, func() (int, error) {
		n, err := d.tree.CreateNode(target, model.NodeInfo{
			Name:           model.DefaultNodeName,
			DisplayOptions: model.DefaultDisplayOptions(),
		})
		if err != nil {
			return 0, err
		}
		return n.ID, nil
	})
	if ok {
		d.setSelection(id)
	}
	return id, ok
}

// RemoveNode removes the selected node. Its children take its place in
// the parent. The root cannot be removed.
func (d *Document) RemoveNode() bool {
	id := d.selected
	_, ok := d.mutate(OpDelete, func() (int, error) {
		if id == 0 {
			return 0, errNoSelection
		}
		return id, d.tree.RemoveNode(id)
	})
	if ok {
		d.setSelection(0)
	}
	return ok
}

// DuplicateNode appends a copy of the selected node, without its
// children, to the selected node's parent and selects the copy.
func (d *Document) DuplicateNode() (int, bool) {
	src := d.selected
	id, ok := d.mutate(OpDuplicate, func() (int, error) {
		if src == 0 {
			return 0, errNoSelection
		}
		orig, found := d.tree.Node(src)
		if !found {
			return 0, fmt.Errorf("%w: %d", tree.ErrNodeNotFound, src)
		}
		parent, hasParent := d.tree.FindParent(src)
		if !hasParent {
			return 0, fmt.Errorf("%w: the root has no parent to hold a copy", tree.ErrInvalidOperation)
		}
		n, err := d.tree.CreateNode(parent.ID, orig.Info())
		if err != nil {
			return 0, err
		}
		return n.ID, nil
	})
	if ok {
		d.setSelection(id)
	}
	return id, ok
}

// MoveUp swaps the selected node with its previous sibling.
func (d *Document) MoveUp() bool {
	return d.reorder(OpMoveUp, tree.Up)
}

// MoveDown swaps the selected node with its next sibling.
func (d *Document) MoveDown() bool {
	return d.reorder(OpMoveDown, tree.Down)
}

func (d *Document) reorder(op OperationType, dir tree.Direction) bool {
	id := d.selected
	_, ok := d.mutate(op, func() (int, error) {
		if id == 0 {
			return 0, errNoSelection
		}
		return id, d.tree.ReorderSibling(id, dir)
	})
	return ok
}

// Reparent makes draggedID the last child of targetID. Drops onto the
// node itself, onto one of its descendants or onto a missing node leave
// the tree unchanged.
func (d *Document) Reparent(draggedID, targetID int) bool {
	_, ok := d.mutate(OpMove, func() (int, error) {
		return draggedID, d.tree.MoveNode(draggedID, targetID)
	})
	return ok
}

// UpdateSelectedNodeProperties overwrites the editable attributes of the
// selected node.
func (d *Document) UpdateSelectedNodeProperties(info model.NodeInfo) bool {
	id := d.selected
	_, ok := d.mutate(OpUpdate, func() (int, error) {
		if id == 0 {
			return 0, errNoSelection
		}
		n, found := d.tree.Node(id)
		if !found {
			return 0, fmt.Errorf("%w: %d", tree.ErrNodeNotFound, id)
		}
		n.Apply(info)
		return id, nil
	})
	return ok
}

// Select makes id the selected node and returns its editable attributes.
func (d *Document) Select(id int) (model.NodeInfo, bool) {
	n, ok := d.tree.Node(id)
	if !ok {
		return model.NodeInfo{}, false
	}
	d.setSelection(id)
	return n.Info(), true
}

// Deselect clears the selection.
func (d *Document) Deselect() {
	d.setSelection(0)
}
