package events

import "time"

// Event is anything published on the bus.
type Event interface {
	Topic() string
}

// Wildcard subscribes to every topic.
const Wildcard = "*"

const (
	TopicRunStarted    = "run.started"
	TopicFileCondensed = "file.condensed"
	TopicRunWarning    = "run.warning"
	TopicRunCompleted  = "run.completed"
)

// RunStarted is published once the estimator is chosen and before any
// file is classified.
type RunStarted struct {
	RunID      string
	Files      int
	TotalUnits int
	UnitKind   string
	Strategy   string
	Estimator  string
}

func (RunStarted) Topic() string { return TopicRunStarted }

// FileCondensed reports the outcome for one file.
type FileCondensed struct {
	RunID          string
	Path           string
	Tier           string
	Level          string
	AllocatedUnits int
	FinalUnits     int
	OverBudget     bool
	Fallback       string
}

func (FileCondensed) Topic() string { return TopicFileCondensed }

// RunWarning carries a non-fatal degradation.
type RunWarning struct {
	RunID   string
	Kind    string
	Path    string
	Message string
}

func (RunWarning) Topic() string { return TopicRunWarning }

// RunCompleted is published after the report is assembled.
type RunCompleted struct {
	RunID      string
	Files      int
	Allocated  int
	Consumed   int
	OverBudget int
	Duration   time.Duration
}

func (RunCompleted) Topic() string { return TopicRunCompleted }
