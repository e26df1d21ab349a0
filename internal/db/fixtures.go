package db

import (
	"fmt"
	"time"

	"github.com/pdxmph/gatherer/internal/project"
)

// fixtureTask describes a sample task relative to the fixture clock
type fixtureTask struct {
	title        string
	size         int
	completedAgo int // days ago; negative means pending
}

type fixtureProject struct {
	name  string
	dueIn int // days from now; 0 means no due date
	tasks []fixtureTask
}

var fixtures = []fixtureProject{
	{
		name:  "Website relaunch",
		dueIn: 60,
		tasks: []fixtureTask{
			{"Audit existing pages", 2, 12},
			{"Pick a static site generator", 1, 5},
			{"Port the blog", 5, 2},
			{"Rewrite landing copy", 3, 1},
			{"Set up redirects", 2, -1},
			{"Accessibility pass", 3, -1},
			{"Launch checklist", 1, -1},
		},
	},
	{
		name:  "Billing migration",
		dueIn: 14,
		tasks: []fixtureTask{
			{"Map old plans to new prices", 3, 30},
			{"Write import script", 5, 20},
			{"Dry run against staging", 3, -1},
			{"Customer email", 2, -1},
			{"Cut over", 5, -1},
		},
	},
	{
		name:  "Mobile offline mode",
		dueIn: 0,
		tasks: []fixtureTask{
			{"Spike: local storage options", 2, 3},
			{"Sync conflict design", 5, -1},
			{"Queue outgoing writes", 8, -1},
		},
	},
	{
		name: "Office move",
		tasks: []fixtureTask{
			{"Book movers", 1, 40},
			{"Label desks", 1, 38},
		},
	},
}

// CreateFixturesDatabase creates a test database with realistic sample data
func CreateFixturesDatabase(dbPath string) error {
	// Initialize empty database
	if err := Initialize(dbPath); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	database, err := Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	now := time.Now()
	for _, f := range fixtures {
		p := project.New(f.name)
		if f.dueIn != 0 {
			due := now.AddDate(0, 0, f.dueIn)
			p.DueDate = &due
		}
		for _, ft := range f.tasks {
			t := p.AddTask(ft.title, ft.size)
			if ft.completedAgo >= 0 {
				t.MarkCompleted(now.AddDate(0, 0, -ft.completedAgo))
			}
		}

		if err := database.SaveProject(p); err != nil {
			return fmt.Errorf("adding fixture project %s: %w", f.name, err)
		}
	}

	return nil
}
