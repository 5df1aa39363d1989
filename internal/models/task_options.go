package models

// TaskOption mutates a content field of a task. Pin, completion and
// position are not expressible as options; they have their own
// operations with stricter authorization.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(t *Task) {
		t.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(t *Task) {
		t.Description = description
	}
}

func WithColor(color string) TaskOption {
	return func(t *Task) {
		t.Color = color
	}
}

func WithDate(date string) TaskOption {
	return func(t *Task) {
		t.Date = date
	}
}

func WithTime(tm string) TaskOption {
	return func(t *Task) {
		t.Time = tm
	}
}
