package tree

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is wrapped by every error describing a request the
// tree refuses without changing anything. Callers treat it as a no-op.
var ErrInvalidOperation = errors.New("invalid operation")

var (
	ErrNodeNotFound  = fmt.Errorf("%w: node not found", ErrInvalidOperation)
	ErrRootImmutable = fmt.Errorf("%w: root node cannot be removed or reordered", ErrInvalidOperation)
	ErrCycle         = fmt.Errorf("%w: target is the node itself or one of its descendants", ErrInvalidOperation)
	ErrBoundary      = fmt.Errorf("%w: node is already first or last among its siblings", ErrInvalidOperation)
)

// ErrMalformed reports a node graph that cannot be adopted as a tree.
var ErrMalformed = errors.New("malformed tree")
