package project

import (
	"math"
	"time"
)

// DefaultWindowDays is the trailing window used to measure recent throughput
const DefaultWindowDays = 7

// MaxWindowDays caps the trailing window at about a century so the window
// start always fits in a time.Duration
const MaxWindowDays = 36500

const day = 24 * time.Hour

// maxProjectionDays is the longest projection that still fits in a time.Duration
var maxProjectionDays = float64(math.MaxInt64) / float64(day)

// ProjectionKind tags the outcome of dividing remaining work by the current rate
type ProjectionKind int

const (
	// Undefined means nothing remains and nothing was closed recently
	Undefined ProjectionKind = iota
	// Infinite means work remains but nothing was closed recently
	Infinite
	// Finite means Days holds a real estimate
	Finite
)

func (k ProjectionKind) String() string {
	switch k {
	case Infinite:
		return "infinite"
	case Finite:
		return "finite"
	default:
		return "undefined"
	}
}

// Projection is the number of days left at the current pace
type Projection struct {
	Kind ProjectionKind
	Days float64
}

// Float returns the projection as NaN, +Inf or the number of days
func (p Projection) Float() float64 {
	switch p.Kind {
	case Infinite:
		return math.Inf(1)
	case Finite:
		return p.Days
	default:
		return math.NaN()
	}
}

func newProjection(remaining int, rate float64) Projection {
	if rate == 0 {
		if remaining == 0 {
			return Projection{Kind: Undefined}
		}
		return Projection{Kind: Infinite}
	}
	return Projection{Kind: Finite, Days: float64(remaining) / rate}
}

func windowOrDefault(windowDays int) int {
	switch {
	case windowDays <= 0:
		return DefaultWindowDays
	case windowDays > MaxWindowDays:
		return MaxWindowDays
	}
	return windowDays
}

// recentlyCompleted returns the tasks completed in [now - windowDays, now]
func (p *Project) recentlyCompleted(now time.Time, windowDays int) []*Task {
	from := now.Add(-time.Duration(windowOrDefault(windowDays)) * day)
	var recent []*Task
	for _, t := range p.Tasks {
		if t.completedWithin(from, now) {
			recent = append(recent, t)
		}
	}
	return recent
}

// CompletedVelocity sums the sizes of tasks completed within the trailing window
func (p *Project) CompletedVelocity(now time.Time, windowDays int) int {
	velocity := 0
	for _, t := range p.recentlyCompleted(now, windowDays) {
		velocity += t.Size
	}
	return velocity
}

// CurrentRate returns the number of tasks completed per day over the trailing window
func (p *Project) CurrentRate(now time.Time, windowDays int) float64 {
	recent := p.recentlyCompleted(now, windowDays)
	return float64(len(recent)) / float64(windowOrDefault(windowDays))
}

// Projection divides the remaining size by the current rate
func (p *Project) Projection(now time.Time, windowDays int) Projection {
	return newProjection(p.RemainingSize(), p.CurrentRate(now, windowDays))
}

// ProjectedDaysRemaining returns the projection as a float: NaN when
// undefined and +Inf when no pace has been measured
func (p *Project) ProjectedDaysRemaining(now time.Time, windowDays int) float64 {
	return p.Projection(now, windowDays).Float()
}

// ProjectedFinish returns the instant the project should finish at the
// current pace. ok is false when the projection is not finite.
func (p *Project) ProjectedFinish(now time.Time, windowDays int) (finish time.Time, ok bool) {
	proj := p.Projection(now, windowDays)
	if proj.Kind != Finite || proj.Days >= maxProjectionDays {
		return time.Time{}, false
	}
	return now.Add(time.Duration(proj.Days * float64(day))), true
}

// OnSchedule reports whether the projected finish falls on or before the due date
func (p *Project) OnSchedule(now time.Time, windowDays int) bool {
	if p.DueDate == nil {
		return false
	}
	finish, ok := p.ProjectedFinish(now, windowDays)
	if !ok {
		return false
	}
	return !finish.After(*p.DueDate)
}

// Forecast is a snapshot of every estimate for one project at one instant
type Forecast struct {
	At              time.Time
	WindowDays      int
	TotalSize       int
	RemainingSize   int
	CompletedTasks  int
	TotalTasks      int
	Done            bool
	Velocity        int
	Rate            float64
	Projection      Projection
	ProjectedFinish *time.Time
	DueDate         *time.Time
	OnSchedule      bool
}

// Forecast computes all estimates against the same instant and window
func (p *Project) Forecast(now time.Time, windowDays int) Forecast {
	windowDays = windowOrDefault(windowDays)
	f := Forecast{
		At:             now,
		WindowDays:     windowDays,
		TotalSize:      p.TotalSize(),
		RemainingSize:  p.RemainingSize(),
		CompletedTasks: p.CompletedCount(),
		TotalTasks:     len(p.Tasks),
		Done:           p.Done(),
		Velocity:       p.CompletedVelocity(now, windowDays),
		Rate:           p.CurrentRate(now, windowDays),
		Projection:     p.Projection(now, windowDays),
		DueDate:        p.DueDate,
		OnSchedule:     p.OnSchedule(now, windowDays),
	}
	if finish, ok := p.ProjectedFinish(now, windowDays); ok {
		f.ProjectedFinish = &finish
	}
	return f
}
