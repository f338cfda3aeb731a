// Package model defines the data structures used throughout the powertree application.
package model

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"
)

// DefaultNodeName is the name given to nodes created by the add operation.
const DefaultNodeName = "New Node"

// Node represents a single node in a power tree.
// ChildPower and TotalPower are derived and only valid after a recompute.
type Node struct {
	XMLName        xml.Name       `json:"-" xml:"node" yaml:"-"`
	ID             int            `json:"id" xml:"id,attr" yaml:"id"`
	Name           string         `json:"name" xml:"name,attr" yaml:"name"`
	Power          float64        `json:"power" xml:"power,attr" yaml:"power"`
	Color          string         `json:"color" xml:"color,attr" yaml:"color"`
	Location       string         `json:"location" xml:"location,attr" yaml:"location"`
	Note           string         `json:"note" xml:"note,attr" yaml:"note"`
	DisplayOptions DisplayOptions `json:"displayOptions" xml:"displayOptions" yaml:"displayOptions"`
	ChildPower     float64        `json:"child_power" xml:"child_power,attr" yaml:"child_power"`
	TotalPower     float64        `json:"total_power" xml:"total_power,attr" yaml:"total_power"`
	Children       []*Node        `json:"children" xml:"children>node" yaml:"children"`
}

// NodeInfo contains the editable attributes of a node.
type NodeInfo struct {
	Name           string
	Power          float64
	Color          string
	Location       string
	Note           string
	DisplayOptions DisplayOptions
}

// Info returns a copy of the editable attributes of the node.
func (n *Node) Info() NodeInfo {
	return NodeInfo{
		Name:           n.Name,
		Power:          n.Power,
		Color:          n.Color,
		Location:       n.Location,
		Note:           n.Note,
		DisplayOptions: n.DisplayOptions.Clone(),
	}
}

// Apply overwrites the editable attributes of the node with info.
// Power is sanitized and display options are normalized.
func (n *Node) Apply(info NodeInfo) {
	n.Name = info.Name
	n.Power = SanitizePower(info.Power)
	n.Color = info.Color
	n.Location = info.Location
	n.Note = info.Note
	n.DisplayOptions = info.DisplayOptions.Normalize()
}

// ParsePower converts user or file input into a power value.
// Anything that is not a finite number becomes 0.
func ParsePower(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return SanitizePower(v)
}

// SanitizePower maps NaN and infinities to 0.
func SanitizePower(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatPower renders a power value in its shortest round-trip form.
func FormatPower(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
