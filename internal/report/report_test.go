package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pdxmph/gatherer/internal/project"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// runway has 7 points left and closed one task in the last week
func runway() *project.Project {
	p := project.New("Project Runway")
	p.ID = 3
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	p.DueDate = &due
	p.AddTask("Start things", 2).MarkCompleted(now.AddDate(0, 0, -1))
	p.AddTask("Middle things", 3)
	p.AddTask("End things", 4)
	return p
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(runway(), now, 7, true)

	assert.Equal(t, int64(3), s.ID)
	assert.Equal(t, "2026-06-01", s.DueDate)
	assert.Equal(t, 9, s.TotalSize)
	assert.Equal(t, 7, s.RemainingSize)
	assert.Equal(t, 1, s.CompletedTasks)
	assert.Equal(t, 2, s.Velocity)
	assert.Equal(t, 0.1429, s.Rate)
	assert.Equal(t, "finite", s.Projection)
	require.NotNil(t, s.ProjectedDays)
	assert.Equal(t, 49.0, *s.ProjectedDays)
	assert.Equal(t, "2026-04-28", s.ProjectedFinish)
	assert.True(t, s.OnSchedule)
	require.Len(t, s.Tasks, 3)
	assert.NotEmpty(t, s.Tasks[0].CompletedAt)
	assert.Empty(t, s.Tasks[1].CompletedAt)

	assert.Empty(t, NewSummary(runway(), now, 7, false).Tasks)
}

func TestNewSummary_NonFinite(t *testing.T) {
	stalled := project.New("Stalled")
	stalled.AddTask("waiting", 2)
	s := NewSummary(stalled, now, 7, false)
	assert.Equal(t, "infinite", s.Projection)
	assert.Nil(t, s.ProjectedDays)
	assert.Empty(t, s.ProjectedFinish)
	assert.False(t, s.OnSchedule)

	empty := NewSummary(project.New("Empty"), now, 7, false)
	assert.Equal(t, "undefined", empty.Projection)
	assert.True(t, empty.Done)
	assert.Equal(t, "done", ScheduleLabel(empty))
}

func TestDescribeProjection(t *testing.T) {
	assert.Equal(t, "nothing to project", DescribeProjection(project.Projection{Kind: project.Undefined}))
	assert.Equal(t, "never at current pace", DescribeProjection(project.Projection{Kind: project.Infinite}))
	assert.Equal(t, "under a day", DescribeProjection(project.Projection{Kind: project.Finite, Days: 0.5}))
	assert.Equal(t, "35.0 days", DescribeProjection(project.Projection{Kind: project.Finite, Days: 35}))
}

func TestNewFormatter_Unknown(t *testing.T) {
	_, err := NewFormatter("xml", nil)
	assert.ErrorContains(t, err, "xml")
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("json", &buf)
	require.NoError(t, err)
	require.NoError(t, f.Format(NewSummary(runway(), now, 7, true)))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Project Runway", decoded["name"])
	assert.Equal(t, "finite", decoded["projection"])
	assert.Equal(t, 49.0, decoded["projected_days"])
	assert.Len(t, decoded["tasks"], 3)
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("yaml", &buf)
	require.NoError(t, err)

	stalled := project.New("Stalled")
	stalled.AddTask("waiting", 2)
	require.NoError(t, f.Format(Summaries([]*project.Project{runway(), stalled}, now, 7)))

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Project Runway", decoded[0]["name"])
	assert.Equal(t, "infinite", decoded[1]["projection"])
	assert.NotContains(t, decoded[1], "projected_days")
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("text", &buf)
	require.NoError(t, err)

	require.NoError(t, f.Format(NewSummary(runway(), now, 7, true)))
	out := buf.String()
	assert.Contains(t, out, "Project Runway")
	assert.Contains(t, out, "49.0 days")
	assert.Contains(t, out, "2026-04-28")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "Middle things")

	buf.Reset()
	require.NoError(t, f.Format([]Summary{}))
	assert.Contains(t, buf.String(), "No projects yet")

	buf.Reset()
	require.NoError(t, f.Format(Summaries([]*project.Project{runway()}, now, 7)))
	assert.Contains(t, buf.String(), "7/9")
	assert.Contains(t, buf.String(), "on schedule")

	assert.Error(t, f.Format(42))
}
