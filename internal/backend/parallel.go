package backend

import (
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sir-Teo/mica/internal/ir"
)

// ParallelCompileReport is the result of RunParallel: one Output per input
// module, in input order, plus timing metrics for the whole run.
type ParallelCompileReport[Output any] struct {
	Outputs []Output
	Metrics ParallelCompileMetrics
}

// ParallelCompileMetrics records wall-clock duration for the overall run and
// for each module individually.
type ParallelCompileMetrics struct {
	TotalDuration time.Duration
	Modules       []ModuleCompileMetrics
}

// ModuleCompileMetrics is one module's compile duration, keyed by its name
// segments joined with "::" ("<root>" when the module declares no name
// segments).
type ModuleCompileMetrics struct {
	Module   string
	Duration time.Duration
}

// RunParallel compiles every module in modules through b, spreading the work
// across a worker pool sized to min(GOMAXPROCS, len(modules)). Workers steal
// work from a shared atomic index; the first compile error wins and stops
// further work from being claimed, mirroring a fail-fast batch compile. On
// success, outputs are returned in the same order as modules regardless of
// which worker finished which index first.
func RunParallel[Output any](b Backend[Output], modules []ir.Module, options BackendOptions) (ParallelCompileReport[Output], error) {
	if len(modules) == 0 {
		return ParallelCompileReport[Output]{}, nil
	}

	outputs := make([]Output, len(modules))
	durations := make([]time.Duration, len(modules))

	var outputsMu sync.Mutex
	var durationsMu sync.Mutex
	var errMu sync.Mutex
	var firstErr error

	start := time.Now()

	workerCount := runtime.GOMAXPROCS(0)
	if workerCount > len(modules) {
		workerCount = len(modules)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	var nextIndex uint64
	var wg sync.WaitGroup
	wg.Add(workerCount)

	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for {
				errMu.Lock()
				failed := firstErr != nil
				errMu.Unlock()
				if failed {
					return
				}

				index := atomic.AddUint64(&nextIndex, 1) - 1
				if index >= uint64(len(modules)) {
					return
				}

				module := modules[index]
				moduleStart := time.Now()
				result, err := b.Compile(module, options)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					continue
				}

				durationsMu.Lock()
				durations[index] = time.Since(moduleStart)
				durationsMu.Unlock()

				outputsMu.Lock()
				outputs[index] = result
				outputsMu.Unlock()
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return ParallelCompileReport[Output]{}, firstErr
	}

	moduleMetrics := make([]ModuleCompileMetrics, len(modules))
	for i, m := range modules {
		name := "<root>"
		if len(m.Name) > 0 {
			name = strings.Join(m.Name, "::")
		}
		moduleMetrics[i] = ModuleCompileMetrics{Module: name, Duration: durations[i]}
	}

	return ParallelCompileReport[Output]{
		Outputs: outputs,
		Metrics: ParallelCompileMetrics{
			TotalDuration: time.Since(start),
			Modules:       moduleMetrics,
		},
	}, nil
}
