package tasks

// NoopBackend is used when no task manager is installed
type NoopBackend struct{}

// NewNoopBackend creates a new no-op backend
func NewNoopBackend() Backend {
	return &NoopBackend{}
}

// Name returns the backend identifier
func (n *NoopBackend) Name() string {
	return "noop"
}

// IsEnabled always returns false for the noop backend
func (n *NoopBackend) IsEnabled() bool {
	return false
}

// PendingTasks returns an empty list
func (n *NoopBackend) PendingTasks(tag string) ([]Task, error) {
	return []Task{}, nil
}

func init() {
	Register("noop", func() Backend { return NewNoopBackend() })
}
