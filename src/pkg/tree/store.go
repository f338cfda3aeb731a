// Package tree implements the rooted, ordered node tree and its power
// aggregation. A Tree owns its nodes: callers may read the nodes it
// returns but must change structure only through Tree methods.
package tree

import (
	"fmt"

	"powertree/local-app/src/pkg/model"
)

// Direction selects the neighbour a node swaps with in ReorderSibling.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Tree is a rooted tree with an id index and parent back-references kept
// in step with every structural change.
type Tree struct {
	root    *model.Node
	nodes   map[int]*model.Node
	parents map[int]*model.Node
	nextID  int
}

// New creates a tree holding only a root with id 1.
func New(root model.NodeInfo) *Tree {
	n := &model.Node{ID: 1, Children: []*model.Node{}}
	n.Apply(root)

	t := &Tree{
		root:    n,
		nodes:   map[int]*model.Node{n.ID: n},
		parents: make(map[int]*model.Node),
		nextID:  n.ID + 1,
	}
	RecomputeAll(n)
	return t
}

// FromRoot adopts an existing node graph. The graph must be a proper tree
// with unique ids; ids are kept as they are and new ids continue after the
// largest one.
func FromRoot(root *model.Node) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: missing root", ErrMalformed)
	}

	t := &Tree{
		root:    root,
		nodes:   make(map[int]*model.Node),
		parents: make(map[int]*model.Node),
	}
	seen := make(map[*model.Node]bool)
	maxID := 0

	var adopt func(n, parent *model.Node) error
	adopt = func(n, parent *model.Node) error {
		if n == nil {
			return fmt.Errorf("%w: nil child below node %d", ErrMalformed, parent.ID)
		}
		if seen[n] {
			return fmt.Errorf("%w: node %d is reachable twice", ErrMalformed, n.ID)
		}
		seen[n] = true
		if _, dup := t.nodes[n.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrMalformed, n.ID)
		}
		t.nodes[n.ID] = n
		if parent != nil {
			t.parents[n.ID] = parent
		}
		if n.ID > maxID {
			maxID = n.ID
		}
		if n.Children == nil {
			n.Children = []*model.Node{}
		}
		for _, child := range n.Children {
			if err := adopt(child, n); err != nil {
				return err
			}
		}
		return nil
	}

	if err := adopt(root, nil); err != nil {
		return nil, err
	}
	t.nextID = maxID + 1
	RecomputeAll(root)
	return t, nil
}

// Root returns the root node.
func (t *Tree) Root() *model.Node {
	return t.root
}

// Node looks a node up by id.
func (t *Tree) Node(id int) (*model.Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// IsRoot reports whether id names the root.
func (t *Tree) IsRoot(id int) bool {
	return id == t.root.ID
}

// CreateNode appends a new node as the last child of the parent.
func (t *Tree) CreateNode(parentID int, info model.NodeInfo) (*model.Node, error) {
	parent, ok := t.nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: parent %d", ErrNodeNotFound, parentID)
	}

	n := &model.Node{ID: t.nextID, Children: []*model.Node{}}
	n.Apply(info)
	t.nextID++

	parent.Children = append(parent.Children, n)
	t.nodes[n.ID] = n
	t.parents[n.ID] = parent
	return n, nil
}

// RemoveNode detaches a node and splices its children into the parent's
// child list at the position the node occupied. Descendants survive.
func (t *Tree) RemoveNode(id int) error {
	if t.IsRoot(id) {
		return ErrRootImmutable
	}
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	parent := t.parents[id]
	idx := indexOf(parent.Children, n)

	spliced := make([]*model.Node, 0, len(parent.Children)-1+len(n.Children))
	spliced = append(spliced, parent.Children[:idx]...)
	spliced = append(spliced, n.Children...)
	spliced = append(spliced, parent.Children[idx+1:]...)
	parent.Children = spliced

	for _, child := range n.Children {
		t.parents[child.ID] = parent
	}
	n.Children = []*model.Node{}
	delete(t.nodes, id)
	delete(t.parents, id)
	return nil
}

// MoveNode makes the node the last child of newParentID. Moving a node
// under itself or under one of its descendants is refused before anything
// changes.
func (t *Tree) MoveNode(id, newParentID int) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	newParent, ok := t.nodes[newParentID]
	if !ok {
		return fmt.Errorf("%w: target %d", ErrNodeNotFound, newParentID)
	}
	if id == newParentID || t.IsDescendant(id, newParentID) {
		return ErrCycle
	}

	oldParent := t.parents[id]
	idx := indexOf(oldParent.Children, n)
	oldParent.Children = append(oldParent.Children[:idx:idx], oldParent.Children[idx+1:]...)

	newParent.Children = append(newParent.Children, n)
	t.parents[id] = newParent
	return nil
}

// ReorderSibling swaps the node with its previous (Up) or next (Down)
// sibling.
func (t *Tree) ReorderSibling(id int, dir Direction) error {
	if t.IsRoot(id) {
		return ErrRootImmutable
	}
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	siblings := t.parents[id].Children
	idx := indexOf(siblings, n)

	other := idx - 1
	if dir == Down {
		other = idx + 1
	}
	if other < 0 || other >= len(siblings) {
		return ErrBoundary
	}
	siblings[idx], siblings[other] = siblings[other], siblings[idx]
	return nil
}

// FindParent returns the parent of a node. The root has none.
func (t *Tree) FindParent(id int) (*model.Node, bool) {
	p, ok := t.parents[id]
	return p, ok
}

// IsDescendant reports whether id lies strictly below ancestorID.
func (t *Tree) IsDescendant(ancestorID, id int) bool {
	for p, ok := t.parents[id]; ok; p, ok = t.parents[p.ID] {
		if p.ID == ancestorID {
			return true
		}
	}
	return false
}

// Walk visits nodes in pre-order. Returning false from fn skips the
// node's subtree.
func (t *Tree) Walk(fn func(n *model.Node, depth int) bool) {
	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	walk(t.root, 0)
}

// Recompute refreshes the derived power fields of the whole tree.
func (t *Tree) Recompute() {
	RecomputeAll(t.root)
}

// Clone returns a deep copy sharing no nodes or maps with t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:   make(map[int]*model.Node, len(t.nodes)),
		parents: make(map[int]*model.Node, len(t.parents)),
		nextID:  t.nextID,
	}

	var clone func(n, parent *model.Node) *model.Node
	clone = func(n, parent *model.Node) *model.Node {
		cp := *n
		cp.DisplayOptions = n.DisplayOptions.Clone()
		cp.Children = make([]*model.Node, 0, len(n.Children))
		c.nodes[cp.ID] = &cp
		if parent != nil {
			c.parents[cp.ID] = parent
		}
		for _, child := range n.Children {
			cp.Children = append(cp.Children, clone(child, &cp))
		}
		return &cp
	}
	c.root = clone(t.root, nil)
	return c
}

// Check verifies the structural invariants and the aggregation equation.
func (t *Tree) Check() error {
	if t.root == nil {
		return fmt.Errorf("%w: missing root", ErrMalformed)
	}
	if _, ok := t.parents[t.root.ID]; ok {
		return fmt.Errorf("%w: root %d has a parent", ErrMalformed, t.root.ID)
	}

	seen := make(map[*model.Node]bool, len(t.nodes))
	ids := make(map[int]bool, len(t.nodes))
	var err error
	var check func(n, parent *model.Node)
	check = func(n, parent *model.Node) {
		if err != nil {
			return
		}
		switch {
		case seen[n]:
			err = fmt.Errorf("%w: node %d is reachable twice", ErrMalformed, n.ID)
		case ids[n.ID]:
			err = fmt.Errorf("%w: duplicate id %d", ErrMalformed, n.ID)
		case t.nodes[n.ID] != n:
			err = fmt.Errorf("%w: index out of date for node %d", ErrMalformed, n.ID)
		case parent != nil && t.parents[n.ID] != parent:
			err = fmt.Errorf("%w: parent reference out of date for node %d", ErrMalformed, n.ID)
		case n.ID >= t.nextID:
			err = fmt.Errorf("%w: node %d is not below the next id %d", ErrMalformed, n.ID, t.nextID)
		}
		if err != nil {
			return
		}
		seen[n] = true
		ids[n.ID] = true
		for _, child := range n.Children {
			check(child, n)
		}
	}
	check(t.root, nil)
	if err != nil {
		return err
	}
	if len(ids) != len(t.nodes) || len(t.parents) != len(t.nodes)-1 {
		return fmt.Errorf("%w: index holds %d nodes, tree holds %d", ErrMalformed, len(t.nodes), len(ids))
	}
	return VerifyAggregation(t.root)
}

func indexOf(nodes []*model.Node, n *model.Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}
