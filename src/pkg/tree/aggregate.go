package tree

import (
	"fmt"

	"powertree/local-app/src/pkg/model"
)

// RecomputeAll refreshes ChildPower and TotalPower of every node below and
// including root, children before parents.
func RecomputeAll(root *model.Node) {
	if root == nil {
		return
	}
	recompute(root)
}

func recompute(n *model.Node) float64 {
	var sum float64
	for _, child := range n.Children {
		sum += recompute(child)
	}
	n.ChildPower = sum
	n.TotalPower = sum + n.Power
	return n.TotalPower
}

// VerifyAggregation returns an error naming the first node, in post-order,
// whose derived fields disagree with its power and its children.
func VerifyAggregation(root *model.Node) error {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if err := VerifyAggregation(child); err != nil {
			return err
		}
	}

	var sum float64
	for _, child := range root.Children {
		sum += child.TotalPower
	}
	if root.ChildPower != sum {
		return fmt.Errorf("node %d: child_power is %v, children sum to %v", root.ID, root.ChildPower, sum)
	}
	if root.TotalPower != sum+root.Power {
		return fmt.Errorf("node %d: total_power is %v, expected %v", root.ID, root.TotalPower, sum+root.Power)
	}
	return nil
}
