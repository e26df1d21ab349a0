package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/gatherer/internal/workflow"
)

type fakeBackend struct {
	enabled bool
	tasks   []Task
	err     error
	gotTag  string
}

func (f *fakeBackend) Name() string    { return "fake" }
func (f *fakeBackend) IsEnabled() bool { return f.enabled }

func (f *fakeBackend) PendingTasks(tag string) ([]Task, error) {
	f.gotTag = tag
	return f.tasks, f.err
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("b", func() Backend { return &fakeBackend{} }))
	require.NoError(t, r.Register("a", NewNoopBackend))

	assert.Error(t, r.Register("a", NewNoopBackend), "names are unique")
	assert.Equal(t, []string{"a", "b"}, r.List())

	b, err := r.Create("a")
	require.NoError(t, err)
	assert.Equal(t, "noop", b.Name())

	_, err = r.Create("missing")
	assert.ErrorContains(t, err, "missing")
}

func TestNewManager(t *testing.T) {
	m, err := NewManager("noop")
	require.NoError(t, err)
	assert.Equal(t, "noop", m.Name())
	assert.False(t, m.IsEnabled())

	_, err = NewManager("jira")
	assert.Error(t, err)

	// Only noop is registered in this package, so auto-detect falls back to it
	m, err = NewManager("")
	require.NoError(t, err)
	assert.Equal(t, "noop", m.Name())
}

func TestImportLines(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	backend := &fakeBackend{
		enabled: true,
		tasks: []Task{
			{Description: "Write docs", Size: 2, Created: base.Add(2 * time.Hour)},
			{Description: "Fix: login", Created: base},
			{Description: "   ", Created: base.Add(time.Hour)},
			{Description: "Ship it", Size: 5, Created: base.Add(3 * time.Hour)},
		},
	}
	m := NewManagerWithBackend(backend)

	text, err := m.ImportLines("+launch")
	require.NoError(t, err)
	assert.Equal(t, "launch", backend.gotTag)
	assert.Equal(t, "Fix: login:1\nWrite docs:2\nShip it:5", text)

	specs := workflow.ParseTasks(text)
	require.Len(t, specs, 3)
	assert.Equal(t, "Fix: login", specs[0].Title)
	assert.Equal(t, 1, specs[0].Size)
	assert.Equal(t, 5, specs[2].Size)
}

func TestFormatLines_MultiLineDescription(t *testing.T) {
	text := FormatLines([]Task{{Description: "Write spec\nand   review it\r\n", Size: 3}})
	assert.Equal(t, "Write spec and review it:3", text)

	specs := workflow.ParseTasks(text)
	require.Len(t, specs, 1)
	assert.Equal(t, "Write spec and review it", specs[0].Title)
	assert.Equal(t, 3, specs[0].Size)
}

func TestImportLines_Errors(t *testing.T) {
	t.Run("disabled backend", func(t *testing.T) {
		m := NewManagerWithBackend(NewNoopBackend())
		_, err := m.ImportLines("launch")
		assert.ErrorIs(t, err, ErrNoBackend)
	})

	t.Run("empty tag", func(t *testing.T) {
		m := NewManagerWithBackend(&fakeBackend{enabled: true})
		_, err := m.ImportLines(" + ")
		assert.Error(t, err)
	})

	t.Run("backend failure", func(t *testing.T) {
		boom := errors.New("boom")
		m := NewManagerWithBackend(&fakeBackend{enabled: true, err: boom})
		_, err := m.ImportLines("launch")
		assert.ErrorIs(t, err, boom)
	})
}
