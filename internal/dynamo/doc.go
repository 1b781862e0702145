// Package dynamo holds the particle store shared by every solver stage.
//
// The store is a set of flat, index-addressed buffers with a fixed layout:
//
//   - [Particle]: 48-byte record (position, velocity, mass, density,
//     pressure, z-height, layer flags, cell id)
//   - [Bond]: 32-byte spring-damper between two particle indices
//   - [Kinematic]: rest offset and pivot for externally driven particles
//
// Bonds and kinematic records refer to particles by index. Indices are
// never reassigned, so the store cannot be compacted or reordered once built.
//
// # Layers
//
// [Layer] is a flag set. Exactly one material (water, air, hull, sail,
// mast) is expected, optionally combined with the kinematic and recycled
// modifiers:
//
//	p.Layer = dynamo.LayerAir | dynamo.LayerRecycled
//	p.Layer.Material() // Air
//	p.Layer.IsFluid()  // true
//
// # Thread Safety
//
// A Store is not safe for concurrent mutation. Solver stages partition it so
// that each task writes only the elements it owns; see package compute.
package dynamo
