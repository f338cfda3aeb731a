package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"powertree/local-app/src/pkg/storage"
	"powertree/local-app/src/pkg/tree"
)

var (
	convertFrom string
	convertTo   string
)

func runConvert(cmd *cobra.Command, args []string) error {
	from := convertFrom
	if from == "" {
		from = storage.FormatFromFilename(args[0], storage.FormatJSON)
	}
	to := convertTo
	if to == "" {
		to = storage.FormatFromFilename(args[1], storage.FormatJSON)
	}
	if !storage.ValidFormat(from) || !storage.ValidFormat(to) {
		return fmt.Errorf("unsupported format, use json, xml or yaml")
	}

	n, err := convertFile(args[0], from, args[1], to)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s (%s) to %s (%s), %d nodes\n", args[0], from, args[1], to, n)
	return nil
}

// convertFile reads a tree document, rebuilds it so ids and derived power
// values are consistent, and writes it in another format. It returns the
// number of nodes written.
func convertFile(in, from, out, to string) (int, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", in, err)
	}
	root, err := storage.Deserialize(data, from)
	if err != nil {
		return 0, err
	}
	t, err := tree.FromRoot(root)
	if err != nil {
		return 0, fmt.Errorf("failed to build tree: %w", err)
	}
	encoded, err := storage.Serialize(t.Root(), to)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, encoded, 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return t.Len(), nil
}
