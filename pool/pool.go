package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/poolq/pool-server/config"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrPoolStopped is returned by Submit, Wait and Shutdown once the
	// pool reached its terminal state. A second Shutdown reports it
	// instead of deadlocking.
	ErrPoolStopped = errors.New("pool is stopped")
	// ErrEmptyCommand is returned by Submit for a job without an argv.
	ErrEmptyCommand = errors.New("empty command")
)

// Pool is a named worker pool: a shared FIFO job queue consumed by a
// fixed number of workers, a mode registry and an append-only result
// log. At most Workers jobs execute concurrently; a sequential-mode
// job additionally holds back all later dequeues until it finishes.
type Pool struct {
	// pool config
	config *config.PoolConfig

	queue   *queue
	modes   *modeRegistry
	results *resultLog

	// dispatch serializes dequeues across workers. A worker holds it
	// only long enough to take one job off the queue, except for a
	// sequential job, where it is held until the job completed. That
	// hold duration is the whole barrier mechanism.
	dispatch sync.Mutex

	// count of user jobs currently executing, used by Wait to turn
	// the dequeue barrier into a completion join.
	am     sync.Mutex
	active int
	idle   *sync.Cond

	wg sync.WaitGroup

	// stop cancel func, kills running commands on forced teardown
	cfn context.CancelFunc

	sm      sync.Mutex
	stopped bool
}

// New creates a pool and spawns its workers.
func New(c *config.PoolConfig) *Pool {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	p := &Pool{
		config:  c,
		queue:   newQueue(),
		modes:   newModeRegistry(),
		results: newResultLog(),
	}
	p.idle = sync.NewCond(&p.am)
	ctx, cancel := context.WithCancel(context.Background())
	p.cfn = cancel
	for i := 0; i < c.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	workersGauge.WithLabelValues(c.Name).Set(float64(c.Workers))
	log.Infof("pool %s started with %d worker(s)", c.Name, c.Workers)
	return p
}

func (p *Pool) Name() string {
	return p.config.Name
}

func (p *Pool) Config() *config.PoolConfig {
	return p.config
}

// Queued returns the number of jobs waiting for a worker.
func (p *Pool) Queued() int {
	return p.queue.Len()
}

// Recorded returns the number of outcome records collected so far.
func (p *Pool) Recorded() int {
	return p.results.Len()
}

func (p *Pool) Stopped() bool {
	p.sm.Lock()
	defer p.sm.Unlock()
	return p.stopped
}

// Submit enqueues one job. It never blocks on job completion; the
// outcome is only observable through the report returned by Shutdown.
func (p *Pool) Submit(args []string, mode Mode) (*Job, error) {
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	j := NewJob(args, mode)
	if err := p.enqueue(j); err != nil {
		return nil, err
	}
	jobsSubmitted.WithLabelValues(p.Name()).Inc()
	log.Debugf("pool %s submitted job %s mode %s: %v", p.Name(), j.ID, j.Mode, j.Args)
	return j, nil
}

func (p *Pool) enqueue(j *Job) error {
	p.sm.Lock()
	defer p.sm.Unlock()
	if p.stopped || !p.queue.Enqueue(j) {
		return ErrPoolStopped
	}
	return nil
}

// Wait blocks until every job submitted before the call has finished,
// then returns with the pool still usable. It rides on the sequential
// barrier: an internal sequential job cannot be dequeued before any
// earlier submission (FIFO), and its body joins on the jobs still
// executing before signalling the caller.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	j := &Job{
		Mode: SequentialMode(),
		fn: func() {
			p.waitIdle()
			close(done)
		},
	}
	if err := p.enqueue(j); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs, lets the workers drain the backlog,
// waits for all of them to stop and returns the aggregated report.
// Calling it again returns ErrPoolStopped.
func (p *Pool) Shutdown(ctx context.Context) (*Summary, error) {
	p.sm.Lock()
	if p.stopped {
		p.sm.Unlock()
		return nil, ErrPoolStopped
	}
	p.stopped = true
	p.sm.Unlock()

	p.queue.Close()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	p.cfn()
	workersGauge.DeleteLabelValues(p.Name())
	jobsRunning.DeleteLabelValues(p.Name())

	s := p.results.Summary()
	s.Pool = p.Name()
	s.Modes = p.modes.Seen()
	log.Infof("pool %s shut down: %d record(s), %d error(s)", p.Name(), len(s.Records), s.Errors)
	return s, nil
}

// Stop force-stops the pool without producing a report: the queue is
// closed, running commands are killed and the workers are joined.
// Used when a pool is replaced under the same name or the server exits.
func (p *Pool) Stop() {
	p.sm.Lock()
	if !p.stopped {
		p.stopped = true
		p.queue.Close()
	}
	p.sm.Unlock()
	p.cfn()
	p.wg.Wait()
	workersGauge.DeleteLabelValues(p.Name())
	jobsRunning.DeleteLabelValues(p.Name())
	log.Infof("pool %s stopped", p.Name())
}

func (p *Pool) beginJob() {
	p.am.Lock()
	p.active++
	p.am.Unlock()
	jobsRunning.WithLabelValues(p.Name()).Inc()
}

func (p *Pool) endJob() {
	jobsRunning.WithLabelValues(p.Name()).Dec()
	p.am.Lock()
	p.active--
	if p.active == 0 {
		p.idle.Broadcast()
	}
	p.am.Unlock()
}

func (p *Pool) waitIdle() {
	p.am.Lock()
	for p.active > 0 {
		p.idle.Wait()
	}
	p.am.Unlock()
}
