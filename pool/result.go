package pool

import (
	"sync"
	"time"
)

// Record is the outcome of one executed job. Records are append-only;
// they are never mutated after being added to the log.
type Record struct {
	Worker   int           `json:"worker"`
	JobID    string        `json:"job-id,omitempty"`
	Args     []string      `json:"args,omitempty"`
	Stdout   []string      `json:"stdout,omitempty"`
	Stderr   []string      `json:"stderr,omitempty"`
	ExitCode int           `json:"exit-code"`
	Failed   bool          `json:"failed,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Summary is the aggregated report returned by Shutdown.
type Summary struct {
	Pool    string    `json:"pool,omitempty"`
	Records []*Record `json:"records,omitempty"`
	Errors  int       `json:"errors"`
	Modes   []string  `json:"modes,omitempty"`
}

// resultLog collects one record per executed job. Appends from
// concurrent workers are serialized under a single lock so records
// never interleave.
type resultLog struct {
	mu      sync.Mutex
	records []*Record
	errors  int
}

func newResultLog() *resultLog {
	return &resultLog{}
}

func (l *resultLog) Append(r *Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
	if r.Failed {
		l.errors++
	}
}

func (l *resultLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Summary returns the records in append order plus the error count.
// Shutdown calls it after all workers have stopped, the lock is taken
// anyway so intermediate reads stay safe.
func (l *resultLog) Summary() *Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs := make([]*Record, len(l.records))
	copy(recs, l.records)
	return &Summary{
		Records: recs,
		Errors:  l.errors,
	}
}
