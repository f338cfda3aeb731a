// Package ui draws render views and command results on a terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/model"
)

// Color palette, taken from the tree drawing of the earlier CLI.
const (
	ColorBranch   = lipgloss.Color("#654321")
	ColorID       = lipgloss.Color("#FFA500")
	ColorName     = lipgloss.Color("#FFFF00")
	ColorAttr     = lipgloss.Color("#969696")
	ColorSelected = lipgloss.Color("#96FF96")
	ColorSuccess  = lipgloss.Color("#96FF96")
	ColorWarning  = lipgloss.Color("#FFFF96")
	ColorError    = lipgloss.Color("#FF9696")
	ColorInfo     = lipgloss.Color("#969696")
)

type styles struct {
	branch   lipgloss.Style
	id       lipgloss.Style
	name     lipgloss.Style
	attr     lipgloss.Style
	selected lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	error    lipgloss.Style
	info     lipgloss.Style
}

// Visualizer writes styled output. With color disabled it writes plain
// text and no escape sequences at all.
type Visualizer struct {
	writer   io.Writer
	useColor bool
	renderer *lipgloss.Renderer
	styles   styles
}

// NewVisualizer creates a Visualizer writing to w
func NewVisualizer(w io.Writer, useColor bool) *Visualizer {
	r := lipgloss.NewRenderer(w)
	return &Visualizer{
		writer:   w,
		useColor: useColor,
		renderer: r,
		styles: styles{
			branch:   r.NewStyle().Foreground(ColorBranch),
			id:       r.NewStyle().Foreground(ColorID),
			name:     r.NewStyle().Foreground(ColorName).Bold(true),
			attr:     r.NewStyle().Foreground(ColorAttr),
			selected: r.NewStyle().Foreground(ColorSelected).Bold(true),
			success:  r.NewStyle().Foreground(ColorSuccess),
			warning:  r.NewStyle().Foreground(ColorWarning),
			error:    r.NewStyle().Foreground(ColorError).Bold(true),
			info:     r.NewStyle().Foreground(ColorInfo),
		},
	}
}

func (v *Visualizer) paint(style lipgloss.Style, s string) string {
	if !v.useColor || s == "" {
		return s
	}
	return style.Render(s)
}

// Println writes a line as is
func (v *Visualizer) Println(message string) {
	fmt.Fprintln(v.writer, message)
}

// Success writes a confirmation line
func (v *Visualizer) Success(message string) {
	fmt.Fprintln(v.writer, v.paint(v.styles.success, message))
}

// Warning writes a warning line
func (v *Visualizer) Warning(message string) {
	fmt.Fprintln(v.writer, v.paint(v.styles.warning, "? "+message))
}

// Error writes an error line
func (v *Visualizer) Error(message string) {
	fmt.Fprintln(v.writer, v.paint(v.styles.error, "Error: "+message))
}

// Info writes a dimmed line
func (v *Visualizer) Info(message string) {
	fmt.Fprintln(v.writer, v.paint(v.styles.info, message))
}

// PrintTree draws a render view
func (v *Visualizer) PrintTree(root *data.RenderNode, showIDs bool) {
	fmt.Fprint(v.writer, v.RenderTree(root, showIDs))
}

// RenderTree draws a render view as an indented tree. The first visible
// attribute of a node heads its entry and the others follow below it.
func (v *Visualizer) RenderTree(root *data.RenderNode, showIDs bool) string {
	var sb strings.Builder
	v.renderNode(&sb, root, "", true, true, showIDs)
	return sb.String()
}

func (v *Visualizer) renderNode(sb *strings.Builder, n *data.RenderNode, prefix string, isRoot, isLast, showIDs bool) {
	childPrefix := prefix
	if !isRoot {
		if isLast {
			sb.WriteString(prefix + v.paint(v.styles.branch, "└── "))
			childPrefix += "    "
		} else {
			sb.WriteString(prefix + v.paint(v.styles.branch, "├── "))
			childPrefix += v.paint(v.styles.branch, "│   ")
		}
	}

	sb.WriteString(v.header(n, showIDs))
	sb.WriteString("\n")

	detailPrefix := childPrefix + "    "
	if len(n.Children) > 0 {
		detailPrefix = childPrefix + v.paint(v.styles.branch, "│   ")
	}
	for i, line := range n.Lines {
		if i == 0 {
			continue
		}
		sb.WriteString(detailPrefix + v.paint(v.styles.attr, line.Text) + "\n")
	}

	for i, child := range n.Children {
		v.renderNode(sb, child, childPrefix, false, i == len(n.Children)-1, showIDs)
	}
}

func (v *Visualizer) header(n *data.RenderNode, showIDs bool) string {
	var parts []string
	if v.useColor && n.Color != "" {
		parts = append(parts, v.renderer.NewStyle().Foreground(lipgloss.Color(n.Color)).Render("●"))
	}

	title := "·"
	if len(n.Lines) > 0 {
		title = n.Lines[0].Text
	}
	if n.Selected {
		parts = append(parts, v.paint(v.styles.selected, title))
	} else if len(n.Lines) > 0 && n.Lines[0].Key == model.AttrName {
		parts = append(parts, v.paint(v.styles.name, title))
	} else {
		parts = append(parts, v.paint(v.styles.attr, title))
	}

	if showIDs {
		parts = append(parts, v.paint(v.styles.id, fmt.Sprintf("[%d]", n.ID)))
	}
	if n.Selected {
		parts = append(parts, v.paint(v.styles.selected, "*"))
	}
	return strings.Join(parts, " ")
}

// RenderAttributes lists the global display toggles
func (v *Visualizer) RenderAttributes(states []model.AttributeState) string {
	var sb strings.Builder
	for _, st := range states {
		mark := v.paint(v.styles.success, "on ")
		if !st.Enabled {
			mark = v.paint(v.styles.info, "off")
		}
		sb.WriteString(fmt.Sprintf("  %-12s %s\n", st.Key, mark))
	}
	return sb.String()
}

// RenderNodeInfo lists the editable attributes of a node
func (v *Visualizer) RenderNodeInfo(id int, info model.NodeInfo) string {
	var sb strings.Builder
	sb.WriteString(v.paint(v.styles.name, info.Name) + " " + v.paint(v.styles.id, fmt.Sprintf("[%d]", id)) + "\n")
	fields := []struct{ label, value string }{
		{"power", model.FormatPower(info.Power)},
		{"color", info.Color},
		{"location", info.Location},
		{"note", info.Note},
	}
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", f.label, f.value))
	}

	var hidden []string
	for _, key := range model.DisplayAttributes {
		if !info.DisplayOptions.Visible(key) {
			hidden = append(hidden, key)
		}
	}
	if len(hidden) > 0 {
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", "hidden", strings.Join(hidden, ", ")))
	}
	return sb.String()
}
