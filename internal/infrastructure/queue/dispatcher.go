// Package queue runs batches of independent calls on a bounded set of
// workers.
package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const defaultWorkers = 4

// Job is one unit of work. Jobs sharing a Key run on the same worker in
// submission order.
type Job struct {
	Key string
	Run func(ctx context.Context) error
}

// Result is the outcome of the job with the same index.
type Result struct {
	Key string
	Err error
}

// Dispatcher routes jobs to a fixed number of workers using consistent
// hashing on the job key.
type Dispatcher struct {
	workers int
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{workers: numWorkers, log: log}
}

type task struct {
	index int
	job   Job
}

// Run executes jobs and returns one Result per job, in input order. A job
// failing does not stop the others. Jobs not yet started when ctx is done
// report ctx.Err().
func (d *Dispatcher) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	n := min(d.workers, len(jobs))
	queues := make([]chan task, n)
	for i := range queues {
		queues[i] = make(chan task, len(jobs))
	}

	var wg sync.WaitGroup
	for i, ch := range queues {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runWorker(ctx, i, ch, results)
		}()
	}

	for i, job := range jobs {
		queues[shardIndex(job.Key, n)] <- task{index: i, job: job}
	}
	for _, ch := range queues {
		close(ch)
	}
	wg.Wait()
	return results
}

// shardIndex maps a key deterministically to a worker index.
func shardIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan task, results []Result) {
	for t := range ch {
		if err := ctx.Err(); err != nil {
			results[t.index] = Result{Key: t.job.Key, Err: err}
			continue
		}
		err := t.job.Run(ctx)
		if err != nil {
			d.log.Debug().Err(err).
				Str("key", t.job.Key).
				Int("worker_id", id).
				Msg("job failed")
		}
		results[t.index] = Result{Key: t.job.Key, Err: err}
	}
}
