package compute

import (
	"fmt"
	"runtime"
)

// Backend runs one data-parallel stage. Dispatch splits [0, n) into chunks,
// runs fn on each and returns only after every chunk finished, so
// consecutive Dispatch calls are separated by a full barrier.
type Backend interface {
	Name() string
	Workers() int
	Dispatch(n int, fn func(start, end int))
	Close()
}

// Names lists the backends NewBackend understands.
func Names() []string {
	return []string{"cpu", "spawn", "serial"}
}

// NewBackend builds a backend by name. workers <= 0 means one per CPU.
func NewBackend(name string, workers int) (Backend, error) {
	switch name {
	case "", "auto", "cpu":
		return NewCPUBackend(workers), nil
	case "spawn":
		return NewSpawnBackend(workers), nil
	case "serial":
		return NewSerialBackend(), nil
	}
	return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, Names())
}

func defaultWorkers(workers int) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return workers
}

// chunks cuts [0, n) into at most parts ranges of at least minChunk elements.
func chunks(n, parts, minChunk int) [][2]int {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if limit := n / minChunk; parts > limit {
		parts = limit
	}
	if parts < 1 {
		parts = 1
	}
	size := (n + parts - 1) / parts
	out := make([][2]int, 0, parts)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
