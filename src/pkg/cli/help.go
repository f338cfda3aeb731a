package cli

import (
	"fmt"
)

// CommandHelp represents the structure of help information for a specific command.
type CommandHelp struct {
	Scope     string
	Operation string
	ShortDesc string
	LongDesc  string
	Syntax    string
	Arguments []string
	Options   []string
	Examples  []string
}

// printHelp prints the help message based on the provided arguments
func (c *CLI) printHelp(args []string) {
	switch len(args) {
	case 0:
		c.showGeneralHelp()
	case 1:
		c.showScopeHelp(args[0])
	case 2:
		c.showOperationHelp(args[0], args[1])
	default:
		c.visualizer.Error("invalid help command, use 'help [scope] [operation]'")
	}
}

// showGeneralHelp displays an overview of all available commands grouped by scope
func (c *CLI) showGeneralHelp() {
	fmt.Fprintln(c.writer, "Command syntax: <scope> <operation> [arguments]")
	fmt.Fprintln(c.writer, "\nAvailable commands:")
	currentScope := ""
	for _, cmd := range commandHelps {
		if cmd.Scope != currentScope {
			fmt.Fprintf(c.writer, "\n%s:\n", cmd.Scope)
			currentScope = cmd.Scope
		}
		fmt.Fprintf(c.writer, "  %-15s %s\n", cmd.Operation, cmd.ShortDesc)
	}
}

// showScopeHelp displays help information for all commands within a specific scope
func (c *CLI) showScopeHelp(scope string) {
	found := false
	for _, cmd := range commandHelps {
		if cmd.Scope == scope {
			if !found {
				fmt.Fprintf(c.writer, "Commands for %s:\n\n", scope)
				found = true
			}
			fmt.Fprintf(c.writer, "%-15s %s\n", cmd.Operation, cmd.ShortDesc)
		}
	}
	if !found {
		c.visualizer.Error(fmt.Sprintf("no help found for %s", scope))
	}
}

// showOperationHelp displays detailed help information for a specific operation within a scope
func (c *CLI) showOperationHelp(scope, operation string) {
	for _, cmd := range commandHelps {
		if cmd.Scope != scope || cmd.Operation != operation {
			continue
		}
		fmt.Fprintf(c.writer, "Command: %s %s\n", scope, operation)
		fmt.Fprintf(c.writer, "Description: %s\n", cmd.LongDesc)
		fmt.Fprintf(c.writer, "Syntax: %s\n", cmd.Syntax)
		if len(cmd.Arguments) > 0 {
			fmt.Fprintln(c.writer, "Arguments:")
			for _, arg := range cmd.Arguments {
				fmt.Fprintf(c.writer, "  %s\n", arg)
			}
		}
		if len(cmd.Options) > 0 {
			fmt.Fprintln(c.writer, "Options:")
			for _, opt := range cmd.Options {
				fmt.Fprintf(c.writer, "  %s\n", opt)
			}
		}
		if len(cmd.Examples) > 0 {
			fmt.Fprintln(c.writer, "Examples:")
			for _, ex := range cmd.Examples {
				fmt.Fprintf(c.writer, "  %s\n", ex)
			}
		}
		return
	}
	c.visualizer.Error(fmt.Sprintf("no help found for %s %s", scope, operation))
}

// commandHelps is a slice of CommandHelp structs containing help information for all commands.
var commandHelps = []CommandHelp{
	{
		Scope:     "node",
		Operation: "add",
		ShortDesc: "Add a new node",
		LongDesc:  "Adds a node named 'New Node' with power 0 as the last child of the given parent. Without a parent the node goes under the selected node, or under the root when nothing is selected. The new node becomes the selection.",
		Syntax:    "node add [parent_id]",
		Arguments: []string{"parent_id: (Optional) The id of the parent node"},
		Examples:  []string{"node add", "node add 4"},
	},
	{
		Scope:     "node",
		Operation: "remove",
		ShortDesc: "Remove the selected node",
		LongDesc:  "Removes the selected node. Its children take its place under its parent, in order. The root cannot be removed.",
		Syntax:    "node remove",
		Examples:  []string{"node remove"},
	},
	{
		Scope:     "node",
		Operation: "duplicate",
		ShortDesc: "Duplicate the selected node",
		LongDesc:  "Adds a copy of the selected node, without its children, as the last child of the same parent and selects the copy.",
		Syntax:    "node duplicate",
		Examples:  []string{"node duplicate"},
	},
	{
		Scope:     "node",
		Operation: "up",
		ShortDesc: "Move the selected node up",
		LongDesc:  "Swaps the selected node with its previous sibling.",
		Syntax:    "node up",
		Examples:  []string{"node up"},
	},
	{
		Scope:     "node",
		Operation: "down",
		ShortDesc: "Move the selected node down",
		LongDesc:  "Swaps the selected node with its next sibling.",
		Syntax:    "node down",
		Examples:  []string{"node down"},
	},
	{
		Scope:     "node",
		Operation: "update",
		ShortDesc: "Update the selected node",
		LongDesc:  "Sets properties of the selected node. Power values that are not numbers become 0. show and hide take a comma separated list of display attributes.",
		Syntax:    "node update <key>=<value>...",
		Arguments: []string{
			"name: The node name",
			"power: The node's own power",
			"color: The node color",
			"location: Free text location",
			"note: Free text note",
			"show, hide: Display attributes to show or hide on this node",
		},
		Examples: []string{`node update name="Main Hall" power=12.5`, "node update hide=note,location"},
	},
	{
		Scope:     "node",
		Operation: "move",
		ShortDesc: "Move a node under another node",
		LongDesc:  "Makes a node the last child of the target. Moving a node under itself or under one of its descendants is ignored.",
		Syntax:    "node move <dragged_id> <target_id>",
		Arguments: []string{"dragged_id: The id of the node to move", "target_id: The id of the new parent"},
		Examples:  []string{"node move 5 2"},
	},
	{
		Scope:     "node",
		Operation: "select",
		ShortDesc: "Select a node",
		LongDesc:  "Selects a node and shows its properties.",
		Syntax:    "node select <id>",
		Arguments: []string{"id: The id of the node"},
		Examples:  []string{"node select 3"},
	},
	{
		Scope:     "node",
		Operation: "deselect",
		ShortDesc: "Clear the selection",
		LongDesc:  "Clears the selection.",
		Syntax:    "node deselect",
		Examples:  []string{"node deselect"},
	},
	{
		Scope:     "node",
		Operation: "drag",
		ShortDesc: "Start dragging a node",
		LongDesc:  "Starts a drag of the node. The tree does not change until the node is dropped.",
		Syntax:    "node drag <id>",
		Arguments: []string{"id: The id of the node to drag"},
		Examples:  []string{"node drag 5"},
	},
	{
		Scope:     "node",
		Operation: "drop",
		ShortDesc: "Drop the dragged node",
		LongDesc:  "Drops the dragged node onto a target, making it the target's last child. Without a target, or onto an invalid target, the drag ends and nothing moves.",
		Syntax:    "node drop [target_id]",
		Arguments: []string{"target_id: (Optional) The id of the new parent"},
		Examples:  []string{"node drop 2", "node drop"},
	},
	{
		Scope:     "tree",
		Operation: "export",
		ShortDesc: "Export the tree to a file",
		LongDesc:  "Writes the whole tree, derived power values included, to a file. The format defaults to the file extension.",
		Syntax:    "tree export <filename> [json|xml|yaml]",
		Arguments: []string{"filename: The file to write", "format: (Optional) json, xml or yaml"},
		Examples:  []string{"tree export plant.json", "tree export plant.out xml"},
	},
	{
		Scope:     "tree",
		Operation: "import",
		ShortDesc: "Import a tree from a file",
		LongDesc:  "Replaces the tree with one read from a file. Older files without locations, notes or display options are accepted. Node ids are reassigned.",
		Syntax:    "tree import <filename> [json|xml|yaml]",
		Arguments: []string{"filename: The file to read", "format: (Optional) json, xml or yaml"},
		Examples:  []string{"tree import plant.json", "tree import plant.yml"},
	},
	{
		Scope:     "tree",
		Operation: "save",
		ShortDesc: "Save the tree to the quick cache",
		LongDesc:  "Stores the tree in the local quick cache, replacing what it held.",
		Syntax:    "tree save",
		Examples:  []string{"tree save"},
	},
	{
		Scope:     "tree",
		Operation: "load",
		ShortDesc: "Load the tree from the quick cache",
		LongDesc:  "Replaces the tree with the one in the local quick cache. An empty or corrupt cache leaves the tree unchanged.",
		Syntax:    "tree load",
		Examples:  []string{"tree load"},
	},
	{
		Scope:     "tree",
		Operation: "view",
		ShortDesc: "View the tree",
		LongDesc:  "Draws the tree with the visible attributes of every node.",
		Syntax:    "tree view [--id]",
		Options:   []string{"--id: Show node ids"},
		Examples:  []string{"tree view", "tree view --id"},
	},
	{
		Scope:     "tree",
		Operation: "check",
		ShortDesc: "Check the tree",
		LongDesc:  "Verifies the tree structure and that every total power equals the node's power plus the total power of its children.",
		Syntax:    "tree check",
		Examples:  []string{"tree check"},
	},
	{
		Scope:     "tree",
		Operation: "undo",
		ShortDesc: "Undo the last change",
		LongDesc:  "Restores the tree as it was before the last change.",
		Syntax:    "tree undo",
		Examples:  []string{"tree undo"},
	},
	{
		Scope:     "tree",
		Operation: "redo",
		ShortDesc: "Redo the last undone change",
		LongDesc:  "Reapplies the last change that was undone.",
		Syntax:    "tree redo",
		Examples:  []string{"tree redo"},
	},
	{
		Scope:     "display",
		Operation: "list",
		ShortDesc: "List display attributes",
		LongDesc:  "Lists every display attribute and whether it is shown.",
		Syntax:    "display list",
		Examples:  []string{"display list"},
	},
	{
		Scope:     "display",
		Operation: "show",
		ShortDesc: "Show an attribute",
		LongDesc:  "Shows an attribute on every node whose own display options allow it.",
		Syntax:    "display show <attribute>",
		Arguments: []string{"attribute: name, power, child_power, total_power, location or note"},
		Examples:  []string{"display show note"},
	},
	{
		Scope:     "display",
		Operation: "hide",
		ShortDesc: "Hide an attribute",
		LongDesc:  "Hides an attribute on every node.",
		Syntax:    "display hide <attribute>",
		Arguments: []string{"attribute: name, power, child_power, total_power, location or note"},
		Examples:  []string{"display hide child_power"},
	},
	{
		Scope:     "system",
		Operation: "exit",
		ShortDesc: "Exit the program",
		LongDesc:  "Exits powertree. Use 'tree save' first to keep the tree in the quick cache.",
		Syntax:    "system exit",
		Examples:  []string{"system exit"},
	},
	{
		Scope:     "system",
		Operation: "quit",
		ShortDesc: "Quit the program",
		LongDesc:  "Equivalent to 'system exit'.",
		Syntax:    "system quit",
		Examples:  []string{"system quit"},
	},
}
