package project

// Sizeable is anything that has a size in work units. A task is sized
// atomically; a project is sized as the sum of its tasks.
type Sizeable interface {
	// TotalSize returns the size of every constituent item.
	TotalSize() int
	// Measure returns the total, restricted to pending items when
	// incompleteOnly is set.
	Measure(incompleteOnly bool) int
}

// HasSize reports whether s has exactly n units of work.
func HasSize(s Sizeable, n int, incompleteOnly bool) bool {
	return s.Measure(incompleteOnly) == n
}
