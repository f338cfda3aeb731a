package session

import (
	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/model"
)

// NodeResult is returned by node select: the selected node and the
// attributes an edit form would show.
type NodeResult struct {
	ID   int
	Info model.NodeInfo
}

// ViewResult is returned by tree view.
type ViewResult struct {
	Root    *data.RenderNode
	ShowIDs bool
}

// Notice reports a command that completed without changing anything,
// such as loading an empty quick cache.
type Notice string

// DisplayResult is returned by display list.
type DisplayResult struct {
	Attributes []model.AttributeState
}
