package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"billscan/internal/port"
)

// BatchConfig holds settings for the batch extraction worker.
type BatchConfig struct {
	Concurrency int
	JobTimeout  time.Duration
}

// Job is one document to extract, pre-bound to its artifact and case.
type Job struct {
	ArtifactID uuid.UUID
	CaseID     uuid.UUID
	Input      port.AcquireInput
}

// JobResult pairs a job with its outcome. Err is non-nil only for identity
// misuse; document-content problems surface as data in Result.
type JobResult struct {
	Job    Job
	Result *ExtractionResult
	Err    error
}

// BatchWorker runs many extractions concurrently under a semaphore. Runs
// share no mutable state: the (artifact, case) binding is enforced per call,
// not via any shared registry, so concurrent documents cannot contaminate
// each other.
type BatchWorker struct {
	svc *ExtractionService
	cfg BatchConfig
}

// NewBatchWorker creates a BatchWorker.
func NewBatchWorker(svc *ExtractionService, cfg BatchConfig) *BatchWorker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &BatchWorker{svc: svc, cfg: cfg}
}

// Run processes all jobs and returns results in job order. It blocks until
// every in-flight extraction has finished; canceling ctx stops new
// dispatches and bounds the in-flight ones.
func (w *BatchWorker) Run(ctx context.Context, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	log.Printf("service.BatchWorker: starting %d jobs (concurrency=%d)", len(jobs), w.cfg.Concurrency)

	for i := range jobs {
		if ctx.Err() != nil {
			results[i] = JobResult{Job: jobs[i], Err: ctx.Err()}
			continue
		}

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
			defer cancel()

			job := jobs[i]
			result, err := w.svc.Extract(jobCtx, job.ArtifactID, job.CaseID, job.Input)
			results[i] = JobResult{Job: job, Result: result, Err: err}
		}(i)
	}

	wg.Wait()
	log.Printf("service.BatchWorker: finished %d jobs", len(jobs))
	return results
}
