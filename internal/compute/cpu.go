package compute

import (
	"sync"
)

// minChunk is the smallest range worth handing to another goroutine.
// Below it, single-threaded is faster due to scheduling overhead.
const minChunk = 64

// chunksPerWorker oversubscribes the pool so uneven neighbour counts
// balance out across workers.
const chunksPerWorker = 4

type workChunk struct {
	start, end int
	fn         func(start, end int)
}

// CPUBackend keeps a pool of persistent worker goroutines and feeds each
// stage to it as a batch of chunks.
type CPUBackend struct {
	workers int

	mu       sync.Mutex // serialises Dispatch; one stage at a time
	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func NewCPUBackend(workers int) *CPUBackend {
	return &CPUBackend{workers: defaultWorkers(workers)}
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Dispatch(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < 2*minChunk || c.workers == 1 {
		fn(0, n)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		c.startWorkers()
	}

	ranges := chunks(n, c.workers*chunksPerWorker, minChunk)
	go func() {
		for _, r := range ranges {
			c.workChan <- workChunk{start: r[0], end: r[1], fn: fn}
		}
	}()
	for range ranges {
		<-c.doneChan
	}
}

// Close stops the workers. A closed backend restarts them on the next
// Dispatch.
func (c *CPUBackend) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	close(c.stopChan)
	c.wg.Wait()
	c.running = false
}

func (c *CPUBackend) startWorkers() {
	c.workChan = make(chan workChunk, c.workers)
	c.doneChan = make(chan struct{}, c.workers)
	c.stopChan = make(chan struct{})
	c.running = true

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *CPUBackend) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopChan:
			return
		case chunk := <-c.workChan:
			chunk.fn(chunk.start, chunk.end)
			c.doneChan <- struct{}{}
		}
	}
}
