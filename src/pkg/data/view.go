package data

import "powertree/local-app/src/pkg/model"

// AttributeLine is one rendered attribute of a node.
type AttributeLine struct {
	Key  string
	Text string
}

// RenderNode is the renderer's view of a node: the attribute lines that
// are visible, the node color, whether it is selected, and its children
// in order.
type RenderNode struct {
	ID       int
	Lines    []AttributeLine
	Color    string
	Selected bool
	Children []*RenderNode
}

// AttributeText returns the display string of one attribute of a node.
func AttributeText(n *model.Node, key string) string {
	switch key {
	case model.AttrName:
		return n.Name
	case model.AttrPower:
		return "Power: " + model.FormatPower(n.Power)
	case model.AttrChildPower:
		return "Child Power: " + model.FormatPower(n.ChildPower)
	case model.AttrTotalPower:
		return "Total Power: " + model.FormatPower(n.TotalPower)
	case model.AttrLocation:
		return "Location: " + n.Location
	case model.AttrNote:
		return "Note: " + n.Note
	}
	return ""
}

// View builds the render view of the whole tree.
func (d *Document) View() *RenderNode {
	return d.renderNode(d.tree.Root())
}

func (d *Document) renderNode(n *model.Node) *RenderNode {
	rn := &RenderNode{
		ID:       n.ID,
		Color:    n.Color,
		Selected: n.ID == d.selected,
		Children: make([]*RenderNode, 0, len(n.Children)),
	}
	for _, key := range model.DisplayAttributes {
		if d.display.Enabled(key) && n.DisplayOptions.Visible(key) {
			rn.Lines = append(rn.Lines, AttributeLine{Key: key, Text: AttributeText(n, key)})
		}
	}
	for _, child := range n.Children {
		rn.Children = append(rn.Children, d.renderNode(child))
	}
	return rn
}
