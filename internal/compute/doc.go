// Package compute is the data-parallel substrate the solver stages run on.
//
// A [Backend] dispatches one stage at a time:
//
//   - cpu: persistent worker pool fed through channels
//   - spawn: goroutines started per stage via [ParallelFor]
//   - serial: the calling goroutine only
//
// Dispatch returns when every chunk of the stage is done, which is the
// barrier between stages:
//
//	backend, _ := compute.NewBackend("cpu", 0)
//	defer backend.Close()
//	backend.Dispatch(len(particles), func(start, end int) {
//		for i := start; i < end; i++ {
//			// write particles[i] only
//		}
//	})
//
// # Accumulation
//
// Tasks may only share results through an [Accumulator], a fixed-point
// int64 channel updated with atomic adds. Each force component is clamped
// to [MaxForce] before scaling, so a slot cannot overflow for fewer than
// [MaxFanIn] contributions.
package compute
