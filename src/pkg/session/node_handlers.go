package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
)

// initNodeCommandHandlers initializes node command handlers
func initNodeCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"add":       handleNodeAdd,
		"remove":    handleNodeRemove,
		"duplicate": handleNodeDuplicate,
		"up":        handleNodeUp,
		"down":      handleNodeDown,
		"update":    handleNodeUpdate,
		"move":      handleNodeMove,
		"select":    handleNodeSelect,
		"deselect":  handleNodeDeselect,
		"drag":      handleNodeDrag,
		"drop":      handleNodeDrop,
	}
}

// parseNodeID parses a node id argument.
func parseNodeID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid node id: %q", arg)
	}
	return id, nil
}

// handleNodeAdd handles the node add command. Mutations the tree refuses
// produce no result and no error.
func handleNodeAdd(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	parentID := 0
	if len(cmd.Args) == 1 {
		id, err := parseNodeID(cmd.Args[0])
		if err != nil {
			return nil, err
		}
		parentID = id
	}

	nodeID, ok := s.Document.AddNode(parentID)
	if !ok {
		return nil, nil
	}
	s.logger.Info(ctx, "Node added", log.Fields{"nodeID": nodeID, "parentID": parentID})
	return fmt.Sprintf("Node %d added", nodeID), nil
}

func handleNodeRemove(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	n, selected := s.Document.Selected()
	if !selected || !s.Document.RemoveNode() {
		return nil, nil
	}
	s.logger.Info(ctx, "Node removed", log.Fields{"nodeID": n.ID})
	return fmt.Sprintf("Node %d removed", n.ID), nil
}

func handleNodeDuplicate(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	nodeID, ok := s.Document.DuplicateNode()
	if !ok {
		return nil, nil
	}
	return fmt.Sprintf("Node %d added", nodeID), nil
}

func handleNodeUp(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.Document.MoveUp()
	return nil, nil
}

func handleNodeDown(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.Document.MoveDown()
	return nil, nil
}

// handleNodeUpdate handles node update. Each argument is key=value; show
// and hide take a comma separated list of display attributes.
func handleNodeUpdate(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	n, selected := s.Document.Selected()
	if !selected {
		return nil, nil
	}
	info := n.Info()

	for _, arg := range cmd.Args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("invalid update argument %q, expected <key>=<value>", arg)
		}
		switch strings.ToLower(key) {
		case "name":
			info.Name = value
		case "power":
			info.Power = model.ParsePower(value)
		case "color":
			info.Color = value
		case "location":
			info.Location = value
		case "note":
			info.Note = value
		case "show", "hide":
			visible := strings.ToLower(key) == "show"
			for _, attr := range strings.Split(value, ",") {
				attr = strings.TrimSpace(attr)
				if err := data.ValidateAttribute(attr); err != nil {
					return nil, err
				}
				info.DisplayOptions[attr] = visible
			}
		default:
			return nil, fmt.Errorf("unknown node property: %s", key)
		}
	}

	if !s.Document.UpdateSelectedNodeProperties(info) {
		return nil, nil
	}
	s.logger.Info(ctx, "Node updated", log.Fields{"nodeID": n.ID})
	return fmt.Sprintf("Node %d updated", n.ID), nil
}

func handleNodeMove(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	dragged, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	target, err := parseNodeID(cmd.Args[1])
	if err != nil {
		return nil, err
	}
	if !s.Document.Reparent(dragged, target) {
		return nil, nil
	}
	s.logger.Info(ctx, "Node moved", log.Fields{"nodeID": dragged, "targetID": target})
	return fmt.Sprintf("Node %d moved under node %d", dragged, target), nil
}

func handleNodeSelect(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	id, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	info, ok := s.Document.Select(id)
	if !ok {
		return nil, fmt.Errorf("node %d not found", id)
	}
	return NodeResult{ID: id, Info: info}, nil
}

func handleNodeDeselect(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.Document.Deselect()
	return nil, nil
}

func handleNodeDrag(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	id, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if state, dragged := s.Document.DragStatus(); state == data.DragDragging {
		return nil, fmt.Errorf("node %d is already being dragged", dragged)
	}
	if !s.Document.DragStart(id) {
		return nil, fmt.Errorf("node %d not found", id)
	}
	return fmt.Sprintf("Dragging node %d", id), nil
}

// handleNodeDrop releases the dragged node, onto a target when one is
// given.
func handleNodeDrop(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	state, dragged := s.Document.DragStatus()
	if state != data.DragDragging {
		return nil, fmt.Errorf("no drag in progress")
	}

	if len(cmd.Args) == 0 {
		s.Document.DragCancel()
		return nil, nil
	}
	target, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if !s.Document.DragEnd(target, true) {
		return nil, nil
	}
	return fmt.Sprintf("Node %d moved under node %d", dragged, target), nil
}
