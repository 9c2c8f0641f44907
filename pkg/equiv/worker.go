package equiv

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/result"
	"github.com/retrobuild/sixtyasm/pkg/selfhost"
)

// WorkerPool runs equivalence checks for many resolved-form programs in
// parallel, reporting progress the way the original search tooling did
// (spec.md section 6.3, "verify-batch").
type WorkerPool struct {
	NumWorkers int
	Results    *result.Table

	checked   atomic.Int64
	mismatch  atomic.Int64
	completed atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers, defaulting
// to runtime.NumCPU() when numWorkers <= 0.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		NumWorkers: numWorkers,
		Results:    result.NewTable(),
	}
}

// Task is one program to check: a name for reporting and its resolved-form
// source bytes.
type Task struct {
	Name     string
	Resolved []byte
}

// Stats returns running totals: how many programs were checked and how
// many of those mismatched.
func (wp *WorkerPool) Stats() (checked, mismatched int64) {
	return wp.checked.Load(), wp.mismatch.Load()
}

// RunTasks distributes tasks across workers, building one Bootstrap per
// cat up front (it is pure data given cat, so every worker shares it).
func (wp *WorkerPool) RunTasks(tasks []Task, cat *catalog.Catalogue, verbose bool) error {
	boot, err := selfhost.Build(cat)
	if err != nil {
		return fmt.Errorf("equiv: build self-hosting assembler: %w", err)
	}

	total := int64(len(tasks))
	ch := make(chan Task, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	done := make(chan struct{})
	start := time.Now()
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				comp := wp.completed.Load()
				mism := wp.mismatch.Load()
				elapsed := time.Since(start)
				fmt.Printf("  [%s] %d/%d programs | %d mismatched\n", elapsed.Round(time.Second), comp, total, mism)
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range ch {
				wp.processTask(task, cat, boot, verbose)
				wp.completed.Add(1)
			}
		}()
	}
	wg.Wait()
	close(done)

	elapsed := time.Since(start)
	fmt.Printf("  [%s] %d/%d programs | %d mismatched | DONE\n", elapsed.Round(time.Second), wp.completed.Load(), total, wp.mismatch.Load())
	return nil
}

func (wp *WorkerPool) processTask(task Task, cat *catalog.Catalogue, boot *selfhost.Bootstrap, verbose bool) {
	wp.checked.Add(1)
	finding := Check(task.Name, task.Resolved, cat, boot)
	wp.Results.Add(finding)
	if !finding.Match {
		wp.mismatch.Add(1)
		if verbose {
			fmt.Printf("  MISMATCH: %s: %s\n", finding.Name, finding.Mismatch)
		}
	}
}
