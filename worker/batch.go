package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	qv "github.com/reason-healthcare/qrvalidator"
)

// BatchValidator provides a simple interface for batch validation.
type BatchValidator struct {
	validator BatchValidatorFunc
	workers   int
}

// BatchValidatorFunc is the function signature for validating a single response.
type BatchValidatorFunc func(ctx context.Context, response []byte) (*qv.Result, error)

// NewBatchValidator creates a new batch validator.
func NewBatchValidator(validateFunc BatchValidatorFunc, workers int) *BatchValidator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchValidator{
		validator: validateFunc,
		workers:   workers,
	}
}

// ValidateBatch validates multiple responses in parallel. Results are
// returned in input order with IDs matching the input indexes.
func (bv *BatchValidator) ValidateBatch(ctx context.Context, responses [][]byte) *BatchResult {
	if len(responses) == 0 {
		return &BatchResult{
			Results:       make([]*JobResult, 0),
			TotalJobs:     0,
			CompletedJobs: 0,
		}
	}

	// For small batches, don't use parallelism
	if len(responses) <= 2 {
		return bv.validateSequential(ctx, responses)
	}

	return bv.validateParallel(ctx, responses)
}

func (bv *BatchValidator) validateSequential(ctx context.Context, responses [][]byte) *BatchResult {
	results := make([]*JobResult, 0, len(responses))
	failed := 0

	for i, response := range responses {
		select {
		case <-ctx.Done():
			return &BatchResult{
				Results:       results,
				TotalJobs:     len(responses),
				CompletedJobs: len(results),
				FailedJobs:    failed,
			}
		default:
		}

		result, err := bv.validator(ctx, response)
		if err != nil {
			failed++
		}
		results = append(results, &JobResult{
			ID:     strconv.Itoa(i),
			Result: result,
			Error:  err,
		})
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(responses),
		CompletedJobs: len(results),
		FailedJobs:    failed,
	}
}

func (bv *BatchValidator) validateParallel(ctx context.Context, responses [][]byte) *BatchResult {
	numWorkers := bv.workers
	if numWorkers > len(responses) {
		numWorkers = len(responses)
	}

	jobs := make(chan indexedResponse, len(responses))
	resultsChan := make(chan *indexedResult, len(responses))

	// Start workers
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				result, err := bv.validator(ctx, job.response)
				resultsChan <- &indexedResult{
					index:  job.index,
					result: result,
					err:    err,
				}
			}
		}()
	}

	// Submit jobs
	go func() {
		for i, response := range responses {
			select {
			case <-ctx.Done():
				break
			case jobs <- indexedResponse{index: i, response: response}:
			}
		}
		close(jobs)
	}()

	// Wait for workers and close results channel
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results in order
	results := make([]*JobResult, len(responses))
	completed := 0
	failed := 0

	for ir := range resultsChan {
		results[ir.index] = &JobResult{
			ID:     strconv.Itoa(ir.index),
			Result: ir.result,
			Error:  ir.err,
		}
		completed++
		if ir.err != nil {
			failed++
		}
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(responses),
		CompletedJobs: completed,
		FailedJobs:    failed,
	}
}

type indexedResponse struct {
	index    int
	response []byte
}

type indexedResult struct {
	index  int
	result *qv.Result
	err    error
}

// ValidateBatchSimple is a convenience function for batch validation.
func ValidateBatchSimple(ctx context.Context, validateFunc BatchValidatorFunc, responses [][]byte) *BatchResult {
	bv := NewBatchValidator(validateFunc, runtime.NumCPU())
	return bv.ValidateBatch(ctx, responses)
}
