package bulk

import (
	"context"
	"runtime"
	"sync"
)

// Operation represents a bulk operation configuration
type Operation struct {
	Jobs            int
	ContinueOnError bool
	Ordered         bool
}

// Result represents the result of a bulk operation
type Result struct {
	TotalItems int
	Succeeded  int
	Failed     int
	Skipped    int
	Errors     []ItemError
}

// ItemError represents an error for a specific item
type ItemError struct {
	Item  string
	Error error
}

// ItemFunc is the function to execute for each item. i is the item's
// position in the input, so callers can store per-item output without locking.
type ItemFunc func(ctx context.Context, i int, item string) error

// Execute runs the bulk operation on the given items.
// Errors are reported in input order regardless of scheduling.
func (op *Operation) Execute(ctx context.Context, items []string, fn ItemFunc) *Result {
	if len(items) == 0 {
		return &Result{}
	}

	// Auto-detect CPU count if jobs == 0
	jobs := op.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(items) {
		jobs = len(items)
	}

	// Force sequential if ordered or jobs == 1
	if op.Ordered || jobs == 1 {
		return op.executeSequential(ctx, items, fn)
	}

	return op.executeParallel(ctx, items, fn, jobs)
}

// executeSequential processes items one by one
func (op *Operation) executeSequential(ctx context.Context, items []string, fn ItemFunc) *Result {
	errs := make([]error, len(items))
	ran := make([]bool, len(items))

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		ran[i] = true
		errs[i] = fn(ctx, i, item)
		if errs[i] != nil && !op.ContinueOnError {
			break
		}
	}

	return collect(items, errs, ran)
}

// executeParallel processes items in parallel using a worker pool
func (op *Operation) executeParallel(ctx context.Context, items []string, fn ItemFunc, workers int) *Result {
	errs := make([]error, len(items))
	ran := make([]bool, len(items))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Create work queue
	workQueue := make(chan int, len(items))
	for i := range items {
		workQueue <- i
	}
	close(workQueue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range workQueue {
				// Stop picking up work once cancelled
				if ctx.Err() != nil {
					return
				}

				ran[i] = true
				errs[i] = fn(ctx, i, items[i])
				if errs[i] != nil && !op.ContinueOnError {
					cancel()
				}
			}
		}()
	}

	wg.Wait()

	return collect(items, errs, ran)
}

func collect(items []string, errs []error, ran []bool) *Result {
	result := &Result{TotalItems: len(items)}
	for i, item := range items {
		switch {
		case !ran[i]:
			result.Skipped++
		case errs[i] != nil:
			result.Failed++
			result.Errors = append(result.Errors, ItemError{Item: item, Error: errs[i]})
		default:
			result.Succeeded++
		}
	}
	return result
}

// Err returns the first item error in input order, or nil
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0].Error
}
