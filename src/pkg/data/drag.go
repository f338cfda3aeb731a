package data

import (
	"powertree/local-app/src/pkg/event"
)

// DragState is the state of the reparenting gesture.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
)

func (s DragState) String() string {
	if s == DragDragging {
		return "dragging"
	}
	return "idle"
}

type dragState struct {
	state  DragState
	nodeID int
}

// NodeBox is the area a renderer drew a node into.
type NodeBox struct {
	ID     int
	X, Y   float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b NodeBox) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// HitTest returns the node under the point. Boxes are checked in order and
// the last match wins; the box of exclude is skipped.
func HitTest(boxes []NodeBox, x, y float64, exclude int) (int, bool) {
	hit, found := 0, false
	for _, b := range boxes {
		if b.ID == exclude {
			continue
		}
		if b.Contains(x, y) {
			hit, found = b.ID, true
		}
	}
	return hit, found
}

// DragStart begins dragging a node. Nothing in the tree changes until the
// drag ends.
func (d *Document) DragStart(id int) bool {
	if d.drag.state != DragIdle {
		return false
	}
	if _, ok := d.tree.Node(id); !ok {
		return false
	}
	d.drag = dragState{state: DragDragging, nodeID: id}
	return true
}

// DragStatus returns the drag state and the dragged node.
func (d *Document) DragStatus() (DragState, int) {
	return d.drag.state, d.drag.nodeID
}

// DragEnd releases the dragged node. With a target the node is reparented
// when the drop is valid. A redraw is announced on every release so the
// renderer can put an unmoved node back in place.
func (d *Document) DragEnd(targetID int, hasTarget bool) bool {
	if d.drag.state != DragDragging {
		return false
	}
	dragged := d.drag.nodeID
	d.drag = dragState{}

	if hasTarget && d.Reparent(dragged, targetID) {
		return true
	}
	d.events.Publish(event.Event{
		Type: event.TreeChanged,
		Data: TreeChange{Operation: OpMove, NodeID: dragged, Nodes: d.tree.Len()},
	})
	return false
}

// DropAt ends the drag at a point, resolving the target from the boxes
// the renderer drew.
func (d *Document) DropAt(boxes []NodeBox, x, y float64) bool {
	target, ok := HitTest(boxes, x, y, d.drag.nodeID)
	return d.DragEnd(target, ok)
}

// DragCancel abandons the drag without changing the tree.
func (d *Document) DragCancel() {
	d.DragEnd(0, false)
}
