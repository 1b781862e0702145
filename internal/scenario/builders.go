package scenario

import (
	"math/rand"

	"github.com/san-kum/sailsim/internal/dynamo"
)

// Bond tuning of the boat structures.
const (
	hullStiffness = 30_000
	sailStiffness = 15_000
	mastStiffness = 20_000
	fuseStiffness = 100_000
	bondBreaking  = 2
	fuseBreaking  = 10 // effectively unbreakable
	sheetBreaking = 3
)

// Z levels: water and hull share 0, the mast is alone at 1, sail and wind
// share 2.
const (
	seaZ  = 0
	mastZ = 1
	windZ = 2
)

const (
	mastMass = 10
	sailMass = 5
)

// current is the initial water velocity of the flowing scenes.
func current(rng *rand.Rand) dynamo.Vec2 {
	return dynamo.V(20+30*rng.Float32(), -10+20*rng.Float32())
}

func water(p Params, z float32) dynamo.Particle {
	return dynamo.Particle{
		Mass:    p.WaterMass(),
		Density: p.TargetDensityWater,
		ZHeight: z,
		Layer:   dynamo.LayerWater | dynamo.LayerRecycled,
	}
}

func air(p Params, z float32) dynamo.Particle {
	return dynamo.Particle{
		Vel:     p.Inflow,
		Mass:    p.AirMass(),
		Density: p.TargetDensityAir,
		ZHeight: z,
		Layer:   dynamo.LayerAir | dynamo.LayerRecycled,
	}
}

// Hurricane is the top-down boat test: a locked hull sits in a current with
// a kinematic rudder at its stern; a mast fused to the hull carries a spar
// and a two-column sail that takes the wind.
func Hurricane(p Params, rng *rand.Rand) (*Scene, error) {
	const (
		hullSpacing   = 8
		hullCols      = 20
		hullRows      = 5
		mastSpacing   = 4
		sailSpacing   = 8
		sailCols      = 2
		sailRows      = 10
		sparDepth     = 2
		rudderLen     = 4
		rudderSpacing = 6
	)
	b := &builder{p: p, rng: rng, scene: &Scene{}}
	locked := p.LockedMass()

	hullOrigin := dynamo.V(-80, -20)
	hull := b.block(hullOrigin, hullCols, hullRows, hullSpacing,
		dynamo.Particle{Mass: locked, ZHeight: seaZ, Layer: dynamo.LayerHull})
	hullBox := Region{
		Min: hullOrigin,
		Max: hullOrigin.Add(dynamo.V((hullCols-1)*hullSpacing, (hullRows-1)*hullSpacing)),
	}

	mastPos := hullOrigin.Add(dynamo.V(hullCols*hullSpacing/2, hullRows*hullSpacing/2))
	mast := b.block(mastPos.Sub(dynamo.V(mastSpacing, mastSpacing)), 3, 3, mastSpacing,
		dynamo.Particle{Mass: mastMass, ZHeight: mastZ, Layer: dynamo.LayerMast})

	sparOrigin := mastPos.Add(dynamo.V(sailSpacing, -sailRows*sailSpacing/2))
	spar := b.block(sparOrigin, sparDepth, sailRows, sailSpacing,
		dynamo.Particle{Mass: mastMass, ZHeight: mastZ, Layer: dynamo.LayerMast})

	sail := b.block(sparOrigin.Add(dynamo.V(sparDepth*sailSpacing, 0)), sailCols, sailRows, sailSpacing,
		dynamo.Particle{Mass: sailMass, ZHeight: windZ, Layer: dynamo.LayerSail})

	// rudder blade trailing aft of the stern, swung about the stern post
	pivot := dynamo.V(hullOrigin.X-hullSpacing/2, hullOrigin.Y+hullRows/2*hullSpacing)
	for k := 1; k <= rudderLen; k++ {
		offset := dynamo.V(-float32(k)*rudderSpacing, 0)
		b.scene.Kinematics = append(b.scene.Kinematics, dynamo.Kinematic{
			Particle:   uint32(len(b.scene.Particles)),
			Pivot:      pivot,
			RestOffset: offset,
			Channel:    dynamo.ChannelRudder,
		})
		b.scene.Particles = append(b.scene.Particles, dynamo.Particle{
			Pos:     pivot.Add(offset),
			Mass:    locked,
			ZHeight: seaZ,
			Layer:   dynamo.LayerHull | dynamo.LayerKinematic,
		})
	}
	rudderBox := Region{
		Min: pivot.Sub(dynamo.V(rudderLen*rudderSpacing, rudderLen*rudderSpacing)),
		Max: pivot.Add(dynamo.V(0, rudderLen*rudderSpacing)),
	}

	ps := b.scene.Particles
	var bonds []dynamo.Bond
	bonds = append(bonds, hull.Bonds(ps, BondSpec{Type: dynamo.BondHull, Stiffness: hullStiffness, Breaking: bondBreaking, Diagonals: true})...)
	bonds = append(bonds, mast.Bonds(ps, BondSpec{Type: dynamo.BondHull, Stiffness: mastStiffness, Breaking: bondBreaking, Diagonals: true})...)

	// mast step: the centre fuse plus the two front corners to the hull
	// particles around the hull centre
	hc := hull.Center()
	bonds = append(bonds, Link(ps, hc, mast.Center(), dynamo.BondFuse, fuseStiffness, fuseBreaking))
	for _, m := range []uint32{mast.At(0, 0), mast.At(2, 0)} {
		for _, h := range []uint32{hc - 1, hc, hc + 1} {
			bonds = append(bonds, Link(ps, h, m, dynamo.BondFuse, fuseStiffness, fuseBreaking))
		}
	}

	bonds = append(bonds, spar.Bonds(ps, BondSpec{
		Type:          dynamo.BondHull,
		Stiffness:     mastStiffness,
		Breaking:      bondBreaking,
		Diagonals:     true,
		SkipStiffness: 2 * mastStiffness,
	})...)
	for row := 0; row < sailRows; row++ {
		bonds = append(bonds, Link(ps, mast.Center(), spar.At(0, row), dynamo.BondHull, fuseStiffness, bondBreaking))
	}

	bonds = append(bonds, sail.Bonds(ps, BondSpec{Type: dynamo.BondSail, Stiffness: sailStiffness, Breaking: bondBreaking, Diagonals: true})...)
	for row := 0; row < sailRows; row++ {
		bonds = append(bonds, Link(ps, spar.At(sparDepth-1, row), sail.At(0, row), dynamo.BondSail, 2*sailStiffness, bondBreaking))
	}

	// sheets from the leech corners to the quarters of the hull
	bonds = append(bonds,
		Link(ps, sail.At(sailCols-1, 0), hull.At(hullCols-1, 0), dynamo.BondSheet, sailStiffness/3, sheetBreaking),
		Link(ps, sail.At(sailCols-1, sailRows-1), hull.At(hullCols-1, hullRows-1), dynamo.BondSheet, sailStiffness/3, sheetBreaking),
	)
	b.scene.Bonds = bonds

	margin := hullSpacing
	sea := water(p, seaZ)
	sea.Vel = p.Inflow
	b.fill(Region{Min: dynamo.V(-300, -150), Max: dynamo.V(300, 150)}, sea, nil,
		hullBox.Grow(float32(margin)), rudderBox)
	b.fill(Region{Min: dynamo.V(-600, -200), Max: dynamo.V(-200, 200)}, air(p, windZ), nil)

	return b.scene, nil
}

// DryDock floats a bonded hull, light enough to move, in flowing water.
func DryDock(p Params, rng *rand.Rand) (*Scene, error) {
	const (
		hullSpacing = 5
		hullCols    = 40
		hullRows    = 10
		hullMass    = 8000
	)
	b := &builder{p: p, rng: rng, scene: &Scene{}}

	origin := dynamo.V(-hullCols*hullSpacing/2, 100)
	hull := b.block(origin, hullCols, hullRows, hullSpacing,
		dynamo.Particle{Mass: hullMass, ZHeight: seaZ, Layer: dynamo.LayerHull})
	b.scene.Bonds = hull.Bonds(b.scene.Particles, BondSpec{
		Type:      dynamo.BondHull,
		Stiffness: hullStiffness,
		Breaking:  bondBreaking,
		Diagonals: true,
	})

	box := Region{
		Min: origin,
		Max: origin.Add(dynamo.V((hullCols-1)*hullSpacing, (hullRows-1)*hullSpacing)),
	}
	b.fill(Region{Min: dynamo.V(-400, -240), Max: dynamo.V(400, 240)}, water(p, seaZ), current, box.Grow(2*hullSpacing))

	return b.scene, nil
}

// WaterOnly is plain flowing water, the scene used to tune the fluid.
func WaterOnly(p Params, rng *rand.Rand) (*Scene, error) {
	b := &builder{p: p, rng: rng, scene: &Scene{}}
	b.fill(Region{Min: dynamo.V(-400, -240), Max: dynamo.V(400, 240)}, water(p, seaZ), current)
	return b.scene, nil
}

// PressureWasher blows air from the left against a locked vertical wall.
func PressureWasher(p Params, rng *rand.Rand) (*Scene, error) {
	const (
		wallX       = 100
		wallLen     = 60
		wallSpacing = 5
	)
	b := &builder{p: p, rng: rng, scene: &Scene{}}
	b.block(dynamo.V(wallX, -wallLen*wallSpacing/2), 1, wallLen, wallSpacing,
		dynamo.Particle{Mass: p.LockedMass(), ZHeight: seaZ, Layer: dynamo.LayerHull})
	b.fill(Region{Min: dynamo.V(-600, -200), Max: dynamo.V(-200, 200)}, air(p, seaZ), nil)
	return b.scene, nil
}

// Squall blows air over a water basin on the same level, so dense water
// deflects the wind at the surface.
func Squall(p Params, rng *rand.Rand) (*Scene, error) {
	b := &builder{p: p, rng: rng, scene: &Scene{}}
	gap := p.SmoothingRadius / 2
	b.fill(Region{Min: dynamo.V(-400, -240), Max: dynamo.V(400, -40)}, water(p, seaZ), current)
	b.fill(Region{Min: dynamo.V(-600, -40+gap), Max: dynamo.V(0, 160)}, air(p, seaZ), nil)
	return b.scene, nil
}
