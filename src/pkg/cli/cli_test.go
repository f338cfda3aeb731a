package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powertree/local-app/src/pkg/adapter"
	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/metrics"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/session"
	"powertree/local-app/src/pkg/storage"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	logger := log.NewNopLogger()
	dir := t.TempDir()
	cfg := &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  dir,
		DatabaseFile: "cli.db",
		CacheSlot:    "treeData",
		HistoryLimit: 10,
		RootName:     "Root",
		HistoryFile:  filepath.Join(dir, "history.txt"),
	}
	store, err := storage.NewStorage(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dm, err := data.NewDataManager(store, cfg, metrics.NewRegistry(), logger)
	require.NoError(t, err)
	sm := session.NewSessionManager(dm, logger)
	t.Cleanup(sm.Stop)

	am, err := adapter.NewAdapterManager(sm, logger)
	require.NoError(t, err)
	cliAdapter, err := adapter.NewCLIAdapter(am, logger)
	require.NoError(t, err)
	require.NoError(t, am.AdapterAdd(cliAdapter))
	t.Cleanup(am.Shutdown)

	var out bytes.Buffer
	c, err := NewCLI(cliAdapter, cfg, &out, logger)
	require.NoError(t, err)
	return c, &out
}

func TestExecuteLine(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, c.ExecuteLine(ctx, "node add"))
	assert.Equal(t, "Node 2 added\n", out.String())

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, `node update name="Main Hall" power=4`))
	require.NoError(t, c.ExecuteLine(ctx, "tree view --id"))
	assert.Contains(t, out.String(), "Node 2 updated\n")
	assert.Contains(t, out.String(), "Root [1]\n")
	assert.Contains(t, out.String(), "└── Main Hall [2] *\n")

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, "node select 2"))
	assert.True(t, strings.HasPrefix(out.String(), "Main Hall [2]\n"))
	assert.Contains(t, out.String(), "  power      4\n")

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, "display hide note"))
	assert.Contains(t, out.String(), "  note         off\n")

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, "node select 99"))
	assert.Equal(t, "Error: node 99 not found\n", out.String())

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, "   "))
	assert.Empty(t, out.String())
}

func TestExecuteLineIgnoredMutationPrintsNothing(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, c.ExecuteLine(ctx, "node move 1 1"))
	require.NoError(t, c.ExecuteLine(ctx, "node remove"))
	assert.Empty(t, out.String())
}

func TestExecuteLineNotices(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, c.ExecuteLine(ctx, "tree load"))
	require.NoError(t, c.ExecuteLine(ctx, "tree undo"))
	assert.Equal(t, "? No saved tree found\n? Nothing to undo\n", out.String())
}

func TestExecuteLineExit(t *testing.T) {
	for _, line := range []string{"system exit", "system quit", "exit", "QUIT"} {
		t.Run(line, func(t *testing.T) {
			c, out := newTestCLI(t)
			err := c.ExecuteLine(context.Background(), line)
			assert.ErrorIs(t, err, session.ErrExit)
			assert.Contains(t, out.String(), "Exiting...")
		})
	}
}

func TestHelp(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, c.ExecuteLine(ctx, "help"))
	for _, scope := range []string{"node:", "tree:", "display:", "system:"} {
		assert.Contains(t, out.String(), "\n"+scope+"\n")
	}

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, "help tree"))
	assert.True(t, strings.HasPrefix(out.String(), "Commands for tree:\n"))
	assert.Contains(t, out.String(), "export")
	assert.NotContains(t, out.String(), "duplicate")

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, "help node move"))
	assert.Contains(t, out.String(), "Syntax: node move <dragged_id> <target_id>\n")

	out.Reset()
	require.NoError(t, c.ExecuteLine(ctx, "help node fly"))
	assert.Equal(t, "Error: no help found for node fly\n", out.String())
}

func TestHelpCoversEveryCommand(t *testing.T) {
	for scope, ops := range map[string][]string{
		"node":    {"add", "remove", "duplicate", "up", "down", "update", "move", "select", "deselect", "drag", "drop"},
		"tree":    {"export", "import", "save", "load", "view", "check", "undo", "redo"},
		"display": {"list", "show", "hide"},
		"system":  {"exit", "quit"},
	} {
		for _, op := range ops {
			found := false
			for _, h := range commandHelps {
				if h.Scope == scope && h.Operation == op {
					found = true
				}
			}
			assert.True(t, found, "%s %s", scope, op)
		}
	}
}

func TestExecuteScript(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()
	script := filepath.Join(t.TempDir(), "build.txt")
	require.NoError(t, os.WriteFile(script, []byte(strings.Join([]string{
		"# build a small plant",
		"node add",
		"",
		"node update power=5",
		"node add",
		"node update power=3",
		"tree check",
		"system exit",
		"node add",
	}, "\n")), 0644))

	err := c.ExecuteScript(ctx, script)
	assert.ErrorIs(t, err, session.ErrExit)
	assert.Contains(t, out.String(), "Tree is consistent (3 nodes)")
	assert.NotContains(t, out.String(), "Node 4 added")
	assert.NotContains(t, out.String(), "build a small plant")

	assert.Error(t, c.ExecuteScript(ctx, filepath.Join(t.TempDir(), "missing.txt")))
}

func TestStopIsIdempotent(t *testing.T) {
	c, _ := newTestCLI(t)
	c.Stop()
	c.Stop()
	select {
	case <-c.stopCh:
	default:
		t.Fatal("stop channel not closed")
	}
}
