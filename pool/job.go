package pool

import (
	"strings"

	"github.com/google/uuid"
)

// SequentialTag is the reserved mode tag that turns a job into a
// sequential barrier.
const SequentialTag = "seq"

// Mode classifies a job. The zero value is the default ordinary mode.
type Mode struct {
	sequential bool
	tag        string
}

func OrdinaryMode(tag string) Mode {
	return Mode{tag: tag}
}

func SequentialMode() Mode {
	return Mode{sequential: true, tag: SequentialTag}
}

// ParseMode maps a wire tag to a Mode. The reserved tag selects the
// sequential barrier, everything else is ordinary metadata.
func ParseMode(s string) Mode {
	if s == SequentialTag {
		return SequentialMode()
	}
	return OrdinaryMode(s)
}

func (m Mode) Sequential() bool {
	return m.sequential
}

func (m Mode) Tag() string {
	return m.tag
}

func (m Mode) String() string {
	if m.tag == "" {
		return "default"
	}
	return m.tag
}

// Job is one unit of work. Jobs are immutable once submitted and
// consumed by exactly one worker.
type Job struct {
	ID   string   `json:"id,omitempty"`
	Args []string `json:"args,omitempty"`
	Mode Mode     `json:"-"`

	// internal jobs carry a body instead of an argv and
	// produce no outcome record.
	fn func()
}

func NewJob(args []string, mode Mode) *Job {
	return &Job{
		ID:   uuid.New().String(),
		Args: args,
		Mode: mode,
	}
}

func (j *Job) String() string {
	return strings.Join(j.Args, " ")
}
