package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powertree/local-app/src/pkg/data"
	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/metrics"
	"powertree/local-app/src/pkg/model"
	"powertree/local-app/src/pkg/storage"
)

func newTestManager(t *testing.T) (*SessionManager, string) {
	t.Helper()
	logger := log.NewNopLogger()
	cfg := &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  t.TempDir(),
		DatabaseFile: "session.db",
		CacheSlot:    "treeData",
		HistoryLimit: 20,
		RootName:     "Root",
		RootColor:    "#ffffff",
		ExportFormat: "json",
	}
	store, err := storage.NewStorage(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dm, err := data.NewDataManager(store, cfg, metrics.NewRegistry(), logger)
	require.NoError(t, err)

	sm := NewSessionManager(dm, logger)
	t.Cleanup(sm.Stop)

	id, err := sm.SessionAdd()
	require.NoError(t, err)
	return sm, id
}

func run(t *testing.T, sm *SessionManager, id string, scope, op string, args ...string) (interface{}, error) {
	t.Helper()
	return sm.SessionRun(context.Background(), id, model.Command{Scope: scope, Operation: op, Args: args})
}

func mustRun(t *testing.T, sm *SessionManager, id string, scope, op string, args ...string) interface{} {
	t.Helper()
	result, err := run(t, sm, id, scope, op, args...)
	require.NoError(t, err)
	return result
}

func TestSessionEditingFlow(t *testing.T) {
	sm, id := newTestManager(t)

	assert.Equal(t, "Node 2 added", mustRun(t, sm, id, "node", "add"))
	mustRun(t, sm, id, "node", "update", "name=A", "power=5", "location=North Hall", "hide=note,location")
	assert.Equal(t, "Node 3 added", mustRun(t, sm, id, "node", "add"))
	mustRun(t, sm, id, "node", "update", "name=B", "power=3")

	result := mustRun(t, sm, id, "tree", "view", "--id")
	view, ok := result.(ViewResult)
	require.True(t, ok)
	assert.True(t, view.ShowIDs)
	require.Len(t, view.Root.Children, 1)
	a := view.Root.Children[0]
	assert.Equal(t, 2, a.ID)
	assert.Equal(t, []data.AttributeLine{
		{Key: model.AttrName, Text: "A"},
		{Key: model.AttrPower, Text: "Power: 5"},
		{Key: model.AttrChildPower, Text: "Child Power: 3"},
		{Key: model.AttrTotalPower, Text: "Total Power: 8"},
	}, a.Lines)
	assert.True(t, a.Children[0].Selected)

	assert.Equal(t, "Tree is consistent (3 nodes)", mustRun(t, sm, id, "tree", "check"))

	result = mustRun(t, sm, id, "node", "select", "2")
	assert.Equal(t, "North Hall", result.(NodeResult).Info.Location)
	assert.Equal(t, "Node 4 added", mustRun(t, sm, id, "node", "duplicate"))
}

func TestSessionIgnoredMutationsAreSilent(t *testing.T) {
	sm, id := newTestManager(t)

	result, err := run(t, sm, id, "node", "remove")
	assert.NoError(t, err)
	assert.Nil(t, result)

	mustRun(t, sm, id, "node", "select", "1")
	result, err = run(t, sm, id, "node", "remove")
	assert.NoError(t, err)
	assert.Nil(t, result)

	result, err = run(t, sm, id, "node", "move", "1", "1")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestSessionCommandErrors(t *testing.T) {
	sm, id := newTestManager(t)

	tests := []struct {
		name  string
		scope string
		op    string
		args  []string
	}{
		{"unknown scope", "graph", "add", nil},
		{"unknown operation", "node", "sort", nil},
		{"missing operation", "tree", "", nil},
		{"too many args", "node", "remove", []string{"1"}},
		{"bad move id", "node", "move", []string{"x", "2"}},
		{"unknown select", "node", "select", []string{"42"}},
		{"unknown attribute", "display", "hide", []string{"shoe_size"}},
		{"bad format", "tree", "export", []string{"out.csv", "csv"}},
		{"drop without drag", "node", "drop", nil},
		{"bad view option", "tree", "view", []string{"--all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, sm, id, tt.scope, tt.op, tt.args...)
			assert.Error(t, err)
		})
	}

	mustRun(t, sm, id, "node", "add")
	_, err := run(t, sm, id, "node", "update", "size=3")
	assert.Error(t, err)
	_, err = run(t, sm, id, "node", "update", "name")
	assert.Error(t, err)
}

func TestSessionDragAndDrop(t *testing.T) {
	sm, id := newTestManager(t)
	mustRun(t, sm, id, "node", "add", "1")
	mustRun(t, sm, id, "node", "add", "1")

	mustRun(t, sm, id, "node", "drag", "3")
	_, err := run(t, sm, id, "node", "drag", "2")
	assert.Error(t, err)

	assert.Equal(t, "Node 3 moved under node 2", mustRun(t, sm, id, "node", "drop", "2"))
	s, _ := sm.SessionGet(id)
	n, _ := s.Document.Node(2)
	require.Len(t, n.Children, 1)

	mustRun(t, sm, id, "node", "drag", "2")
	assert.Nil(t, mustRun(t, sm, id, "node", "drop", "3"))
	state, _ := s.Document.DragStatus()
	assert.Equal(t, data.DragIdle, state)
}

func TestSessionPersistence(t *testing.T) {
	sm, id := newTestManager(t)

	assert.Equal(t, Notice("No saved tree found"), mustRun(t, sm, id, "tree", "load"))

	mustRun(t, sm, id, "node", "add")
	mustRun(t, sm, id, "node", "update", "power=2.5")
	assert.Equal(t, "Tree saved", mustRun(t, sm, id, "tree", "save"))

	path := filepath.Join(t.TempDir(), "tree.yaml")
	mustRun(t, sm, id, "tree", "export", path)

	mustRun(t, sm, id, "node", "add")
	assert.Equal(t, "Tree loaded (2 nodes)", mustRun(t, sm, id, "tree", "load"))
	assert.Equal(t, "Tree imported from "+path+" (2 nodes)", mustRun(t, sm, id, "tree", "import", path, "YAML"))

	s, _ := sm.SessionGet(id)
	assert.Equal(t, 2.5, s.Document.Root().TotalPower)

	mustRun(t, sm, id, "tree", "undo")
	mustRun(t, sm, id, "tree", "undo")
	assert.Equal(t, 3, s.Document.NodeCount())
	mustRun(t, sm, id, "tree", "redo")
	assert.Equal(t, 2, s.Document.NodeCount())
}

func TestSessionDisplay(t *testing.T) {
	sm, id := newTestManager(t)

	result := mustRun(t, sm, id, "display", "hide", "Power")
	attrs := result.(DisplayResult).Attributes
	assert.Equal(t, model.AttributeState{Key: model.AttrPower, Enabled: false}, attrs[1])

	result = mustRun(t, sm, id, "display", "list")
	assert.Len(t, result.(DisplayResult).Attributes, len(model.DisplayAttributes))
}

func TestSystemExit(t *testing.T) {
	sm, id := newTestManager(t)
	_, err := run(t, sm, id, "system", "exit")
	assert.True(t, errors.Is(err, ErrExit))
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, g.Write(&metric))
	return metric.GetGauge().GetValue()
}

func TestSessionLifecycle(t *testing.T) {
	sm, id := newTestManager(t)
	gauge := sm.dataManager.Metrics.SessionsActive
	assert.Equal(t, 1.0, gaugeValue(t, gauge))

	other, err := sm.SessionAdd()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2.0, gaugeValue(t, gauge))

	// sessions have independent documents
	mustRun(t, sm, other, "node", "add")
	s, _ := sm.SessionGet(id)
	assert.Equal(t, 1, s.Document.NodeCount())

	sm.cleanupInactiveSessions(time.Now().Add(sm.sessionTimeout + time.Minute))
	_, exists := sm.SessionGet(id)
	assert.False(t, exists)
	assert.Equal(t, 0.0, gaugeValue(t, gauge))

	_, err = run(t, sm, id, "tree", "view")
	assert.Error(t, err)
}

func TestPinnedSessionSurvivesIdleCleanup(t *testing.T) {
	sm, id := newTestManager(t)
	mustRun(t, sm, id, "node", "add")
	mustRun(t, sm, id, "node", "add")
	require.NoError(t, sm.SessionPin(id))
	assert.Error(t, sm.SessionPin("missing"))

	idle, err := sm.SessionAdd()
	require.NoError(t, err)

	sm.cleanupInactiveSessions(time.Now().Add(sm.sessionTimeout + time.Minute))

	_, exists := sm.SessionGet(idle)
	assert.False(t, exists)

	result, err := run(t, sm, id, "tree", "check")
	require.NoError(t, err)
	assert.Equal(t, "Tree is consistent (3 nodes)", result)
}

func TestSessionRunAfterStop(t *testing.T) {
	sm, id := newTestManager(t)
	sm.Stop()
	_, err := run(t, sm, id, "tree", "view")
	assert.Error(t, err)
}
