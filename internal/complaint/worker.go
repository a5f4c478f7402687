package complaint

import (
	"context"
	"log"
	"sync"
)

// StatusUpdater is the remote call a status worker makes.
type StatusUpdater interface {
	UpdateComplaintStatus(ctx context.Context, seq, code int) error
}

// statusJob is one remote status update.
type statusJob struct {
	index int // position in the caller's id list
	id    string
	seq   int
}

// statusResult is the settled outcome of one statusJob.
type statusResult struct {
	index int
	id    string
	err   error
}

// Worker represents a single worker in the status update pool.
//
// Lifecycle:
//  1. Start: Begin listening on jobs channel
//  2. Process: Issue one remote status update
//  3. Result: Send the outcome, success or failure, to the results channel
//  4. Repeat until the jobs channel closes
type Worker struct {
	id      int
	jobs    <-chan statusJob
	results chan<- statusResult
	ctx     context.Context
	remote  StatusUpdater
	code    int
	wg      *sync.WaitGroup
}

// WorkerPool fans a bulk status change out over a fixed number of workers.
// A failing job never stops its worker or cancels its siblings; every job
// produces exactly one result.
//
// Configuration:
//   - Worker count: WORKER_POOL_SIZE (default: 10)
//   - Job and result buffers: sized to the batch, so Submit never blocks and
//     workers never wait on an unread result
type WorkerPool struct {
	workers     []*Worker
	jobs        chan statusJob
	results     chan statusResult
	wg          sync.WaitGroup
	workerCount int
}

// NewWorkerPool starts workerCount workers that set every submitted complaint
// to the status with the given remote code. capacity is the number of jobs
// the caller will submit.
func NewWorkerPool(ctx context.Context, remote StatusUpdater, code, workerCount, capacity int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if capacity > 0 && workerCount > capacity {
		workerCount = capacity
	}
	log.Printf("  → Creating worker pool with %d workers...\n", workerCount)

	pool := &WorkerPool{
		workers:     make([]*Worker, workerCount),
		jobs:        make(chan statusJob, capacity),
		results:     make(chan statusResult, capacity),
		workerCount: workerCount,
	}

	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			id:      i + 1,
			jobs:    pool.jobs,
			results: pool.results,
			ctx:     ctx,
			remote:  remote,
			code:    code,
			wg:      &pool.wg,
		}

		pool.workers[i] = worker
		pool.wg.Add(1)

		go worker.start()
	}

	return pool
}

// Submit adds a job to the queue.
func (p *WorkerPool) Submit(job statusJob) {
	p.jobs <- job
}

// Close closes the job channel, waits for every worker to drain it and then
// closes the results channel.
func (p *WorkerPool) Close() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

// Results returns the results channel.
func (p *WorkerPool) Results() <-chan statusResult {
	return p.results
}

func (w *Worker) start() {
	defer w.wg.Done()

	for job := range w.jobs {
		err := w.remote.UpdateComplaintStatus(w.ctx, job.seq, w.code)

		w.results <- statusResult{index: job.index, id: job.id, err: err}

		if err != nil {
			log.Printf("  [Worker #%d] ✗ Failed to update %s: %v\n", w.id, job.id, err)
		} else {
			log.Printf("  [Worker #%d] ✓ Updated %s\n", w.id, job.id)
		}
	}
}
