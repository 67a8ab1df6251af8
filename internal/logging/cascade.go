package logging

import (
	"github.com/charmbracelet/log"

	"taskgraph/internal/graph"
)

// CascadeObserver counts propagation steps and, when tracing, logs each one
// at debug level.
type CascadeObserver struct {
	logger  *log.Logger
	trace   bool
	steps   int
	changes int
}

var _ graph.Observer = (*CascadeObserver)(nil)

// NewCascadeObserver returns an observer writing to logger.
func NewCascadeObserver(logger *log.Logger, trace bool) *CascadeObserver {
	if logger == nil {
		logger = Discard()
	}
	return &CascadeObserver{logger: logger, trace: trace}
}

// CascadeStep implements graph.Observer.
func (o *CascadeObserver) CascadeStep(s graph.Step) {
	o.steps++
	if s.Changed {
		o.changes++
	}
	if !o.trace {
		return
	}
	o.logger.Debug("cascade step",
		"root", s.Root,
		"task_id", s.TaskID,
		"depth", s.Depth,
		"from", s.From,
		"to", s.To,
		"changed", s.Changed,
	)
}

// Steps returns the number of steps observed since the last Reset.
func (o *CascadeObserver) Steps() int { return o.steps }

// Changes returns the number of status changes observed since the last Reset.
func (o *CascadeObserver) Changes() int { return o.changes }

// Reset clears the counters.
func (o *CascadeObserver) Reset() {
	o.steps = 0
	o.changes = 0
}
