package hybridwall

import "github.com/gogpu/hybridwall/internal/parallel"

// WorkerPool runs the band-parallel filter work of passes and exports.
// A nil *WorkerPool stands for the process-wide pool with GOMAXPROCS
// workers, which is never closed.
type WorkerPool struct {
	p *parallel.WorkerPool
}

// NewWorkerPool starts a pool of workers goroutines; workers <= 0 means
// GOMAXPROCS. The caller closes it once no renderer or export uses it.
func NewWorkerPool(workers int) *WorkerPool {
	return &WorkerPool{p: parallel.NewWorkerPool(workers)}
}

// Workers returns the number of workers.
func (w *WorkerPool) Workers() int { return w.get().Workers() }

// Close stops the workers. Closing nil or closing twice does nothing.
func (w *WorkerPool) Close() {
	if w != nil {
		w.p.Close()
	}
}

func (w *WorkerPool) get() *parallel.WorkerPool {
	if w == nil {
		return parallel.Default()
	}
	return w.p
}
