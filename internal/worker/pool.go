// Package worker runs article-generation jobs on a fixed pool of workers.
// Workers register their own job channel with the dispatcher (a channel of
// channels), so a job is only handed to a worker that is actually idle.
package worker

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of generation work. ID is used only for logging and
// tracing; Execute does the work and reports its own status to storage.
type Job interface {
	Execute() error
	ID() string
}

// Worker pulls jobs from its own channel after registering it with the pool.
type Worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	quit       chan bool
	wg         *sync.WaitGroup
	logger     *logrus.Logger
}

// NewWorker creates a worker bound to the given registration pool.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, logger *logrus.Logger) Worker {
	return Worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		quit:       make(chan bool),
		wg:         wg,
		logger:     logger,
	}
}

// Start makes the worker listen for jobs on its channel.
func (w Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Re-register after every job so the dispatcher only sees idle workers.
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Infof("Worker %d: started job %s", w.id, job.ID())
				if err := job.Execute(); err != nil {
					// The job has already recorded its failure; this log is for operators.
					w.logger.Errorf("Worker %d: job %s failed: %v", w.id, job.ID(), err)
				} else {
					w.logger.Infof("Worker %d: finished job %s", w.id, job.ID())
				}
			case <-w.quit:
				return
			}
		}
	}()
}

// Stop signals the worker to exit after its current job.
func (w Worker) Stop() {
	go func() {
		w.quit <- true
	}()
}

// Dispatcher owns the job queue and the worker pool.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []Worker
	wg         sync.WaitGroup
	quit       chan bool
	logger     *logrus.Logger
}

// NewDispatcher creates a dispatcher with a buffered job queue.
func NewDispatcher(maxWorkers, jobQueueSize int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, jobQueueSize),
		workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan bool),
		logger:     logger,
	}
}

// Run starts the workers and the dispatch loop.
func (d *Dispatcher) Run() {
	d.logger.Infof("Generation dispatcher starting with %d workers", d.maxWorkers)
	for i := 1; i <= d.maxWorkers; i++ {
		w := NewWorker(i, d.workerPool, &d.wg, d.logger)
		d.workers = append(d.workers, w)
		w.Start()
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			go func(job Job) {
				// Blocks until a worker re-registers as idle.
				jobChannel := <-d.workerPool
				jobChannel <- job
			}(job)
		case <-d.quit:
			return
		}
	}
}

// Submit enqueues a job without blocking. A full queue is an error the
// HTTP handler turns into a 503 rather than an unbounded wait.
func (d *Dispatcher) Submit(job Job) error {
	select {
	case d.jobQueue <- job:
		d.logger.Infof("Dispatcher: job %s queued", job.ID())
		return nil
	default:
		return fmt.Errorf("generation queue is full")
	}
}

// Stop shuts the dispatch loop down and waits for in-flight jobs.
func (d *Dispatcher) Stop() {
	d.logger.Info("Dispatcher: shutting down")
	d.quit <- true
	for _, w := range d.workers {
		w.Stop()
	}
	d.wg.Wait()
	d.logger.Info("Dispatcher: all workers stopped")
}
