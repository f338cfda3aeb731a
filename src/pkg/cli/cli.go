// Package cli runs the interactive terminal front end.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"powertree/local-app/src/pkg/adapter"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/session"
	"powertree/local-app/src/pkg/ui"
)

// CLI represents the command-line interface
type CLI struct {
	adapter     *adapter.CLIAdapter
	sessionID   string
	historyFile string
	visualizer  *ui.Visualizer
	writer      io.Writer
	rl          *readline.Instance
	rlMu        sync.Mutex
	stopCh      chan struct{}
	stopOnce    sync.Once
	logger      *log.Logger
}

// NewCLI creates a new CLI instance with its own session
func NewCLI(a *adapter.CLIAdapter, cfg *model.Config, w io.Writer, logger *log.Logger) (*CLI, error) {
	sessionID, err := a.SessionAdd()
	if err != nil {
		return nil, fmt.Errorf("failed to create CLI session: %w", err)
	}
	return &CLI{
		adapter:     a,
		sessionID:   sessionID,
		historyFile: cfg.HistoryFile,
		visualizer:  ui.NewVisualizer(w, cfg.UseColor),
		writer:      w,
		stopCh:      make(chan struct{}),
		logger:      logger,
	}, nil
}

// Run reads commands until exit, EOF or Stop
func (c *CLI) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.adapter.PromptGet(c.sessionID),
		HistoryFile:     c.historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          c.writer,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	c.rlMu.Lock()
	c.rl = rl
	c.rlMu.Unlock()
	defer rl.Close()

	fmt.Fprintln(c.writer, "Welcome to powertree! Type 'help' for a list of commands or 'system exit' to quit.")

	for {
		select {
		case <-c.stopCh:
			return nil
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(c.writer, "Use 'system exit' to exit the program.")
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			select {
			case <-c.stopCh:
				return nil
			default:
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if err := c.ExecuteLine(ctx, line); errors.Is(err, session.ErrExit) {
			return nil
		}
		rl.SetPrompt(c.adapter.PromptGet(c.sessionID))
	}
}

// Stop ends Run, interrupting a pending read
func (c *CLI) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.rlMu.Lock()
		if c.rl != nil {
			c.rl.Close()
		}
		c.rlMu.Unlock()
	})
}

// ExecuteScript runs every command in a file. Blank lines and lines
// starting with '#' are skipped. An exit command ends the script and is
// returned.
func (c *CLI) ExecuteScript(ctx context.Context, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open script file: %w", err)
	}
	defer file.Close()

	c.logger.Info(ctx, "Running script", log.Fields{"file": filename})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.visualizer.Info(c.adapter.PromptGet(c.sessionID) + line)
		if err := c.ExecuteLine(ctx, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script file: %w", err)
	}
	return nil
}

// ExecuteLine runs one input line and prints its outcome. Command errors
// are printed, not returned; only session.ErrExit is returned.
func (c *CLI) ExecuteLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	args := adapter.ParseArgs(line)
	switch strings.ToLower(args[0]) {
	case "help":
		c.printHelp(args[1:])
		return nil
	case "exit", "quit":
		if len(args) == 1 {
			line = "system exit"
		}
	}

	result, err := c.adapter.ProcessInput(ctx, c.sessionID, line)
	if errors.Is(err, session.ErrExit) {
		c.visualizer.Info("Exiting...")
		return err
	}
	if err != nil {
		c.visualizer.Error(err.Error())
		return nil
	}
	c.printResult(result)
	return nil
}

func (c *CLI) printResult(result interface{}) {
	switch r := result.(type) {
	case nil:
	case string:
		c.visualizer.Success(r)
	case session.Notice:
		c.visualizer.Warning(string(r))
	case session.ViewResult:
		c.visualizer.PrintTree(r.Root, r.ShowIDs)
	case session.NodeResult:
		fmt.Fprint(c.writer, c.visualizer.RenderNodeInfo(r.ID, r.Info))
	case session.DisplayResult:
		fmt.Fprint(c.writer, c.visualizer.RenderAttributes(r.Attributes))
	default:
		c.visualizer.Println(fmt.Sprintf("%v", r))
	}
}
