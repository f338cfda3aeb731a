package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"powertree/local-app/src/pkg/config"
)

var (
	logsFilter  string
	logsFollow  bool
	logsRate    = time.Second
	logsNoColor bool
)

// logEntry is one JSON record as written by the application logger.
type logEntry map[string]interface{}

type logStyles struct {
	useColor bool
	time     lipgloss.Style
	levels   map[string]lipgloss.Style
	key      lipgloss.Style
	notice   lipgloss.Style
}

func newLogStyles(w io.Writer, useColor bool) logStyles {
	r := lipgloss.NewRenderer(w)
	return logStyles{
		useColor: useColor,
		time:     r.NewStyle().Foreground(lipgloss.Color("5")),
		levels: map[string]lipgloss.Style{
			"DEBUG": r.NewStyle().Foreground(lipgloss.Color("4")),
			"INFO":  r.NewStyle().Foreground(lipgloss.Color("2")),
			"WARN":  r.NewStyle().Foreground(lipgloss.Color("3")),
			"ERROR": r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
		key:    r.NewStyle().Foreground(lipgloss.Color("6")),
		notice: r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (s logStyles) paint(style lipgloss.Style, text string) string {
	if !s.useColor {
		return text
	}
	return style.Render(text)
}

func formatTimestamp(timestamp string) string {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Format("06-01-02 15:04:05.000000")
}

// formatLogEntry renders a record on one line followed by its fields, one
// per line, in key order.
func formatLogEntry(entry logEntry, s logStyles) string {
	timestamp, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)
	level = strings.ToUpper(level)

	levelStyle, ok := s.levels[level]
	if !ok {
		levelStyle = lipgloss.NewStyle()
	}

	var sb strings.Builder
	sb.WriteString(s.paint(s.time, formatTimestamp(timestamp)))
	sb.WriteString(" ")
	sb.WriteString(s.paint(levelStyle, fmt.Sprintf("%-5s", level)))
	sb.WriteString(" ")
	sb.WriteString(msg)

	keys := make([]string, 0, len(entry))
	for key := range entry {
		if key != "time" && key != "level" && key != "msg" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("\n    %s %v", s.paint(s.key, key+":"), entry[key]))
	}
	return sb.String()
}

// logTailer remembers how far each log file has been read.
type logTailer struct {
	dir       string
	filter    string
	styles    logStyles
	out       io.Writer
	positions map[string]int64
}

func newLogTailer(dir, filter string, out io.Writer, styles logStyles) *logTailer {
	return &logTailer{
		dir:       dir,
		filter:    strings.ToLower(filter),
		styles:    styles,
		out:       out,
		positions: make(map[string]int64),
	}
}

// poll prints every record appended since the previous call.
func (lt *logTailer) poll() error {
	files, err := filepath.Glob(filepath.Join(lt.dir, "*.log"))
	if err != nil {
		return fmt.Errorf("failed to list log files: %w", err)
	}
	sort.Strings(files)
	for _, path := range files {
		if err := lt.readFile(path); err != nil {
			fmt.Fprintln(lt.out, lt.styles.paint(lt.styles.notice, err.Error()))
		}
	}
	return nil
}

func (lt *logTailer) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}
	if stat.Size() < lt.positions[path] {
		fmt.Fprintln(lt.out, lt.styles.paint(lt.styles.notice, filepath.Base(path)+" has been truncated, starting from beginning"))
		lt.positions[path] = 0
	}
	if _, err := file.Seek(lt.positions[path], io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek in %s: %w", filepath.Base(path), err)
	}

	reader := bufio.NewReader(file)
	pos := lt.positions[path]
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// a partial last line is read again on the next poll
			break
		}
		pos += int64(len(line))

		var entry logEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		formatted := formatLogEntry(entry, lt.styles)
		if lt.filter == "" || strings.Contains(strings.ToLower(formatted), lt.filter) {
			fmt.Fprintln(lt.out, formatted)
		}
	}
	lt.positions[path] = pos
	return nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	} else {
		if err := config.ConfigLoad(configPath); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		dir = config.ConfigGet().LogFolder
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("log directory '%s' does not exist", dir)
	}

	out := cmd.OutOrStdout()
	tailer := newLogTailer(dir, logsFilter, out, newLogStyles(out, !logsNoColor))
	if err := tailer.poll(); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return followLogs(ctx, tailer, logsRate)
}

func followLogs(ctx context.Context, tailer *logTailer, rate time.Duration) error {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := tailer.poll(); err != nil {
				return err
			}
		}
	}
}
