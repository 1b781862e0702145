// Package physics implements the solver stages that run after the grid is
// built, in tick order:
//
//   - [Model.ComputeDensity]: poly6 summation over the 3x3 cell block
//   - [Model.ComputePressure]: Tait equation of state, capped
//   - [Model.ComputeForces] and [Model.CommitVelocities]: SPH pair terms,
//     soft-sphere repulsion, sail aerodynamics, damping
//   - [Model.SolveBonds]: spring-damper network with fracture
//   - [Model.Integrate]: drain bond forces, kinematics, recycling, bounds
//
// Every stage is a single compute.Backend dispatch in which task i writes
// only element i (or bond i). The only shared write path is the
// compute.Accumulator used by the bond stage.
//
// # Pair Table
//
// How two particles interact depends on their materials and heights:
//
//	physics.Classify(dynamo.Water, dynamo.Water) // RelSame
//	physics.Classify(dynamo.Air, dynamo.Hull)    // RelFluidSolid
//	physics.Classify(dynamo.Water, dynamo.Air)   // RelFluidFluid
//	physics.Classify(dynamo.Hull, dynamo.Sail)   // RelNone
//
// Pairs whose z-heights differ by ZTolerance or more never interact.
package physics
