// Package report turns project forecasts into plain data for text, JSON
// and YAML output.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/pdxmph/gatherer/internal/project"
)

const dateLayout = "2006-01-02"

// Summary is the serializable view of one project and its forecast
type Summary struct {
	ID              int64         `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	DueDate         string        `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	TotalSize       int           `json:"total_size" yaml:"total_size"`
	RemainingSize   int           `json:"remaining_size" yaml:"remaining_size"`
	CompletedTasks  int           `json:"completed_tasks" yaml:"completed_tasks"`
	TotalTasks      int           `json:"total_tasks" yaml:"total_tasks"`
	Done            bool          `json:"done" yaml:"done"`
	WindowDays      int           `json:"window_days" yaml:"window_days"`
	Velocity        int           `json:"velocity" yaml:"velocity"`
	Rate            float64       `json:"rate" yaml:"rate"`
	Projection      string        `json:"projection" yaml:"projection"`
	ProjectedDays   *float64      `json:"projected_days,omitempty" yaml:"projected_days,omitempty"`
	ProjectedFinish string        `json:"projected_finish,omitempty" yaml:"projected_finish,omitempty"`
	OnSchedule      bool          `json:"on_schedule" yaml:"on_schedule"`
	Tasks           []TaskSummary `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// TaskSummary is the serializable view of one task
type TaskSummary struct {
	ID          int64  `json:"id" yaml:"id"`
	Order       int    `json:"order" yaml:"order"`
	Title       string `json:"title" yaml:"title"`
	Size        int    `json:"size" yaml:"size"`
	CompletedAt string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// NewSummary computes the forecast for p at now and flattens it.
// withTasks controls whether the task list is included.
func NewSummary(p *project.Project, now time.Time, windowDays int, withTasks bool) Summary {
	f := p.Forecast(now, windowDays)
	s := Summary{
		ID:             p.ID,
		Name:           p.Name,
		TotalSize:      f.TotalSize,
		RemainingSize:  f.RemainingSize,
		CompletedTasks: f.CompletedTasks,
		TotalTasks:     f.TotalTasks,
		Done:           f.Done,
		WindowDays:     f.WindowDays,
		Velocity:       f.Velocity,
		Rate:           round(f.Rate, 4),
		Projection:     f.Projection.Kind.String(),
		OnSchedule:     f.OnSchedule,
	}
	if f.DueDate != nil {
		s.DueDate = f.DueDate.UTC().Format(dateLayout)
	}
	if f.Projection.Kind == project.Finite {
		days := round(f.Projection.Days, 2)
		s.ProjectedDays = &days
	}
	if f.ProjectedFinish != nil {
		s.ProjectedFinish = f.ProjectedFinish.UTC().Format(dateLayout)
	}

	if withTasks {
		for _, t := range p.Tasks {
			ts := TaskSummary{ID: t.ID, Order: t.Order, Title: t.Title, Size: t.Size}
			if t.CompletedAt != nil {
				ts.CompletedAt = t.CompletedAt.Format(time.RFC3339)
			}
			s.Tasks = append(s.Tasks, ts)
		}
	}
	return s
}

// Summaries builds list rows without task detail
func Summaries(projects []*project.Project, now time.Time, windowDays int) []Summary {
	out := make([]Summary, 0, len(projects))
	for _, p := range projects {
		out = append(out, NewSummary(p, now, windowDays, false))
	}
	return out
}

// DescribeProjection renders a projection for humans
func DescribeProjection(p project.Projection) string {
	switch p.Kind {
	case project.Infinite:
		return "never at current pace"
	case project.Finite:
		if p.Days < 1 {
			return "under a day"
		}
		return fmt.Sprintf("%.1f days", p.Days)
	default:
		return "nothing to project"
	}
}

// ScheduleLabel describes how the forecast compares to the due date
func ScheduleLabel(s Summary) string {
	switch {
	case s.Done:
		return "done"
	case s.DueDate == "":
		return "no due date"
	case s.OnSchedule:
		return "on schedule"
	default:
		return "behind"
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
