// Package main is the entry point for the powertree application.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "powertree [script...]",
	Short: "powertree - edit power distribution trees",
	Long: `powertree edits a tree of nodes that each carry a power value. Parent nodes
show the power of their children and the total of their subtree. Script files
given as arguments run before the interactive prompt starts.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap(args)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a saved tree between json, xml and yaml",
	Long: `Reads a tree document, including documents written by older versions, and
writes it in the format matching the output file extension.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var logsCmd = &cobra.Command{
	Use:   "logs [log directory]",
	Short: "Print the application logs in a compact form",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogs,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file (json or yaml)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Input format (default: from the input extension)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Output format (default: from the output extension)")

	logsCmd.Flags().StringVarP(&logsFilter, "filter", "f", "", "Only show entries containing this text")
	logsCmd.Flags().BoolVar(&logsFollow, "follow", false, "Keep watching the log files for new entries")
	logsCmd.Flags().DurationVarP(&logsRate, "rate", "r", logsRate, "Poll interval when following")
	logsCmd.Flags().BoolVar(&logsNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(logsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
