package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/gatherer/internal/db"
	"github.com/pdxmph/gatherer/internal/report"
	"github.com/pdxmph/gatherer/internal/tasks"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeBackend struct {
	pending []tasks.Task
}

func (f *fakeBackend) Name() string    { return "fake" }
func (f *fakeBackend) IsEnabled() bool { return true }

func (f *fakeBackend) PendingTasks(tag string) ([]tasks.Task, error) {
	return f.pending, nil
}

type harness struct {
	t       *testing.T
	dbPath  string
	cfgPath string
	backend *fakeBackend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GATHERER_DB", "")
	t.Setenv("GATHERER_LOG_LEVEL", "")
	t.Setenv("GATHERER_WINDOW_DAYS", "")

	dir := t.TempDir()
	return &harness{
		t:       t,
		dbPath:  filepath.Join(dir, "gatherer.db"),
		cfgPath: filepath.Join(dir, "config.toml"),
		backend: &fakeBackend{},
	}
}

// run executes one command line against the harness database
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	a := &app{
		now: func() time.Time { return now },
		taskManager: func(string) (*tasks.Manager, error) {
			return tasks.NewManagerWithBackend(h.backend), nil
		},
		interactive: func() bool { return false },
	}
	cmd := newRootCmd(a, "test")

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.cfgPath, "--db", h.dbPath, "--log-level", "warn"}, args...))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run("", args...)
	require.NoError(h.t, err, "stderr: %s", errOut)
	return out
}

func (h *harness) showJSON(id string) report.Summary {
	h.t.Helper()
	var s report.Summary
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("show", id, "--format", "json")), &s))
	return s
}

func TestInit(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("init")
	assert.Contains(t, out, h.dbPath)

	_, _, err := h.run("", "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestMissingDatabase(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "list")
	assert.ErrorContains(t, err, "gatherer init")
}

func TestNew_Success(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")

	out := h.mustRun("new", "--name", "Project Runway", "--tasks", "Start things:3\nFix: login\n\nEnd things:2", "--due", "2026-06-01")
	assert.Contains(t, out, `Created project #1 "Project Runway" with 3 tasks`)

	s := h.showJSON("1")
	assert.Equal(t, "Project Runway", s.Name)
	assert.Equal(t, "2026-06-01", s.DueDate)
	assert.Equal(t, 6, s.TotalSize)
	assert.Equal(t, "infinite", s.Projection)
	require.Len(t, s.Tasks, 3)
	assert.Equal(t, "Fix: login", s.Tasks[1].Title)
	assert.Equal(t, 1, s.Tasks[1].Size)
	assert.Equal(t, []int{1, 2, 3}, []int{s.Tasks[0].Order, s.Tasks[1].Order, s.Tasks[2].Order})
}

func TestNew_ValidationFailureSavesNothing(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")

	_, errOut, err := h.run("", "new", "--name", " ", "--tasks", "Fine:2\nBroken:0")
	require.ErrorIs(t, err, ErrNotSaved)
	assert.Contains(t, errOut, "2 error(s) prohibited this project from being saved")
	assert.Contains(t, errOut, "name can't be blank")
	assert.Contains(t, errOut, "size must be greater than 0")

	assert.JSONEq(t, "[]", h.mustRun("list", "--format", "json"))
}

func TestNew_TasksFromStdinAndImport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")
	h.backend.pending = []tasks.Task{
		{Description: "Imported later", Size: 4, Created: now},
		{Description: "Imported first", Created: now.Add(-time.Hour)},
	}

	_, errOut, err := h.run("Typed:2\n", "new", "--name", "Mixed", "--tasks-file", "-", "--import-tag", "launch")
	require.NoError(t, err, errOut)

	s := h.showJSON("1")
	require.Len(t, s.Tasks, 3)
	assert.Equal(t, "Typed", s.Tasks[0].Title)
	assert.Equal(t, "Imported first", s.Tasks[1].Title)
	assert.Equal(t, "Imported later", s.Tasks[2].Title)
	assert.Equal(t, 4, s.Tasks[2].Size)
}

func TestNew_InteractiveNeedsTerminal(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")

	_, _, err := h.run("", "new", "--interactive")
	assert.ErrorContains(t, err, "requires a terminal")

	out := h.mustRun("list", "--format", "json")
	assert.JSONEq(t, "[]", out)
}

func TestDelete_NeedsYesWithoutTerminal(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")
	h.mustRun("new", "--name", "Keep me", "--tasks", "One:1")

	_, _, err := h.run("", "delete", "1")
	assert.ErrorContains(t, err, "without --yes")
	assert.Equal(t, "Keep me", h.showJSON("1").Name)
}

func TestNew_BadDueDate(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")

	_, _, err := h.run("", "new", "--name", "Late", "--due", "soon")
	assert.ErrorContains(t, err, "soon")
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")
	h.mustRun("new", "--name", "Runway", "--tasks", "One:2\nTwo:3")

	assert.Contains(t, h.mustRun("complete", "1"), "Completed task 1")
	s := h.showJSON("1")
	assert.Equal(t, 3, s.RemainingSize)
	assert.Equal(t, 2, s.Velocity)
	require.NotNil(t, s.ProjectedDays)
	assert.Equal(t, 21.0, *s.ProjectedDays)

	out := h.mustRun("add-task", "1", "Three:4")
	assert.Contains(t, out, "position 3")

	_, _, err := h.run("", "add-task", "1", "Broken:0")
	assert.ErrorContains(t, err, "size must be greater than 0")

	h.mustRun("due", "1", "2026-03-20")
	s = h.showJSON("1")
	assert.Equal(t, "2026-03-20", s.DueDate)
	assert.False(t, s.OnSchedule, "7 points at one task a week is well past the due date")

	h.mustRun("due", "1", "none")
	assert.Empty(t, h.showJSON("1").DueDate)

	h.mustRun("reopen", "1")
	assert.Equal(t, 0, h.showJSON("1").CompletedTasks)

	text := h.mustRun("show", "1")
	assert.Contains(t, text, "Runway")
	assert.Contains(t, text, "Three")

	list := h.mustRun("list")
	assert.Contains(t, list, "Runway")
	assert.Contains(t, list, "9/9")

	assert.Contains(t, h.mustRun("delete", "1", "--yes"), "Deleted project 1")
	_, _, err = h.run("", "show", "1")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestNotFoundAndBadArgs(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")

	_, _, err := h.run("", "complete", "42")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, _, err = h.run("", "show", "abc")
	assert.ErrorContains(t, err, "invalid project id")

	_, _, err = h.run("", "list", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = h.run("", "add-task", "9", "Orphan")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, _, err = h.run("", "list", "--window", "200000")
	assert.ErrorContains(t, err, "--window must be between 1 and 36500")
}

func TestListYAML(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "--fixtures")

	out := h.mustRun("list", "--format", "yaml")
	assert.Contains(t, out, "name: Website relaunch")
	assert.Contains(t, out, "projection:")
}

func TestConfig(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "--window", "14")
	assert.Contains(t, out, "window_days = 14")
	assert.Contains(t, out, h.dbPath)

	h.mustRun("config", "--write", "--window", "10")
	out = h.mustRun("config")
	assert.Contains(t, out, "window_days = 10")

	_, _, err := h.run("", "list", "--window", "-3")
	assert.Error(t, err)
}
