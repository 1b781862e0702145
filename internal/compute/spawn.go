package compute

import "sync"

// SpawnBackend starts fresh goroutines for every Dispatch. It has no idle
// cost, at the price of goroutine startup on each stage.
type SpawnBackend struct {
	workers  int
	minChunk int
}

func NewSpawnBackend(workers int) *SpawnBackend {
	return &SpawnBackend{workers: defaultWorkers(workers), minChunk: minChunk}
}

func (s *SpawnBackend) Name() string { return "spawn" }
func (s *SpawnBackend) Workers() int { return s.workers }
func (s *SpawnBackend) Close()       {}

func (s *SpawnBackend) Dispatch(n int, fn func(start, end int)) {
	ParallelFor(n, s.workers, s.minChunk, fn)
}

// ParallelFor executes fn in parallel over [0, n) on up to workers goroutines
// and waits for all of them.
func ParallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	ranges := chunks(n, workers, minChunk)

	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for _, r := range ranges {
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(r[0], r[1])
	}
	wg.Wait()
}
