package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powertree/local-app/src/pkg/event"
)

func TestDragLifecycle(t *testing.T) {
	doc, _ := newTestDocument(t)
	a, _ := doc.AddNode(1)
	b, _ := doc.AddNode(1)
	rec := record(doc)

	assert.False(t, doc.DragStart(99))
	state, _ := doc.DragStatus()
	assert.Equal(t, DragIdle, state)

	require.True(t, doc.DragStart(b))
	assert.False(t, doc.DragStart(a), "already dragging")
	state, id := doc.DragStatus()
	assert.Equal(t, DragDragging, state)
	assert.Equal(t, b, id)
	assert.Equal(t, []int{a, b}, childIDs(doc.Root()), "tree untouched while dragging")

	assert.True(t, doc.DragEnd(a, true))
	nodeA, _ := doc.Node(a)
	assert.Equal(t, []int{b}, childIDs(nodeA))
	state, _ = doc.DragStatus()
	assert.Equal(t, DragIdle, state)
	assert.Equal(t, []event.EventType{event.TreeChanged}, rec.types())

	assert.False(t, doc.DragEnd(1, true), "not dragging")
}

func TestInvalidDropStillRedraws(t *testing.T) {
	doc, _ := newTestDocument(t)
	a, _ := doc.AddNode(1)
	b, _ := doc.AddNode(a)
	rec := record(doc)

	require.True(t, doc.DragStart(a))
	assert.False(t, doc.DragEnd(b, true))
	assert.Equal(t, []event.EventType{event.TreeChanged}, rec.types())

	require.True(t, doc.DragStart(a))
	doc.DragCancel()
	assert.Len(t, rec.events, 2)
	assert.False(t, doc.CanRedo())
	nodeA, _ := doc.Node(a)
	assert.Equal(t, []int{b}, childIDs(nodeA))
}

func TestHitTest(t *testing.T) {
	boxes := []NodeBox{
		{ID: 1, X: 0, Y: 0, Width: 100, Height: 100},
		{ID: 2, X: 10, Y: 10, Width: 20, Height: 20},
		{ID: 3, X: 20, Y: 20, Width: 20, Height: 20},
	}

	id, ok := HitTest(boxes, 25, 25, 0)
	require.True(t, ok)
	assert.Equal(t, 3, id, "last match wins")

	id, ok = HitTest(boxes, 25, 25, 3)
	require.True(t, ok)
	assert.Equal(t, 2, id)

	id, ok = HitTest(boxes, 30, 30, 0)
	require.True(t, ok)
	assert.Equal(t, 3, id, "edges are inside")

	_, ok = HitTest(boxes, 150, 5, 0)
	assert.False(t, ok)
}

func TestDropAt(t *testing.T) {
	doc, _ := newTestDocument(t)
	a, _ := doc.AddNode(1)
	b, _ := doc.AddNode(1)
	boxes := []NodeBox{
		{ID: a, X: 0, Y: 0, Width: 50, Height: 20},
		{ID: b, X: 0, Y: 40, Width: 50, Height: 20},
	}

	require.True(t, doc.DragStart(b))
	assert.False(t, doc.DropAt(boxes, 10, 45), "own box is skipped")

	require.True(t, doc.DragStart(b))
	assert.True(t, doc.DropAt(boxes, 10, 5))
	nodeA, _ := doc.Node(a)
	assert.Equal(t, []int{b}, childIDs(nodeA))
}
