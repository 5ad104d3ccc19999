package pool

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// exit code recorded when a command cannot be started at all
const exitNotStarted = 127

// worker loops dequeue -> run -> record until the queue reports closed
// and drained. The dispatch lock makes competing dequeues hand out
// disjoint jobs; for a sequential job it is held across the execution,
// so no later job starts before the sequential one finished.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	log.Debugf("pool %s worker %d started", p.Name(), id)
	for {
		p.dispatch.Lock()
		j, ok := p.queue.Dequeue()
		if !ok {
			p.dispatch.Unlock()
			log.Debugf("pool %s worker %d stopped", p.Name(), id)
			return
		}
		if j.fn == nil {
			p.modes.Record(j.Mode)
			// count the job before the dispatch lock is released so a
			// barrier dequeued right after cannot miss it in its join
			p.beginJob()
		}
		if j.Mode.Sequential() {
			p.execute(ctx, id, j)
			p.dispatch.Unlock()
			continue
		}
		p.dispatch.Unlock()
		p.execute(ctx, id, j)
	}
}

func (p *Pool) execute(ctx context.Context, id int, j *Job) {
	if j.fn != nil {
		// internal job (Wait rendezvous), leaves no record and no
		// registry entry
		j.fn()
		return
	}
	defer p.endJob()

	rec := p.run(ctx, id, j)
	p.results.Append(rec)
	jobsCompleted.WithLabelValues(p.Name()).Inc()
	if rec.Failed {
		jobsFailed.WithLabelValues(p.Name()).Inc()
	}
	jobDuration.WithLabelValues(p.Name()).Observe(rec.Duration.Seconds())
}

// run executes the job's command as a child process, capturing stdout
// and stderr separately. A non-zero exit marks the record as failed
// but never aborts the worker.
func (p *Pool) run(ctx context.Context, id int, j *Job) *Record {
	rec := &Record{
		Worker: id,
		JobID:  j.ID,
		Args:   j.Args,
	}
	cmd := exec.CommandContext(ctx, j.Args[0], j.Args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	rec.Duration = time.Since(start)
	rec.Stdout = splitLines(stdout.String())
	rec.Stderr = splitLines(stderr.String())
	switch err := err.(type) {
	case nil:
	case *exec.ExitError:
		rec.ExitCode = err.ExitCode()
	default:
		rec.ExitCode = exitNotStarted
		rec.Stderr = append(rec.Stderr, err.Error())
	}
	rec.Failed = rec.ExitCode != 0
	if p.config.Echo {
		p.echo(id, rec)
	}
	return rec
}

func (p *Pool) echo(id int, rec *Record) {
	for _, line := range rec.Stdout {
		log.Infof("pool %s worker %d out: %s", p.Name(), id, line)
	}
	for _, line := range rec.Stderr {
		log.Infof("pool %s worker %d err: %s", p.Name(), id, line)
	}
	log.Infof("pool %s worker %d done: %q exit %d", p.Name(), id, rec.Args, rec.ExitCode)
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
