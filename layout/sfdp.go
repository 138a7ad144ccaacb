package layout

import "math"

// point is a 2D coordinate used throughout the placement pipeline.
type point struct{ X, Y float64 }

// sfdpNode is one particle in the force-directed simulation: a position
// plus an optional rigidGroup id. Particles sharing a rigidGroup move by
// the same translation each iteration (§4.8 step 4's "rigid groups"); a
// group of -1 means the node moves independently.
type sfdpNode struct {
	ID         string
	Pos        point
	RigidGroup int
}

// sfdpEdge is a weighted attraction edge between two node indices.
type sfdpEdge struct {
	A, B   int
	Weight float64
}

// runSFDP places nodes by alternating repulsion (every pair) and
// attraction (weighted edges), cooling the step size geometrically each
// iteration, per §4.8 steps 2/4. Rigid groups are enforced by averaging
// each member's computed displacement and applying the average to every
// member, so the group translates as a unit instead of deforming.
func runSFDP(nodes []sfdpNode, edges []sfdpEdge, cfg Config, iterations int) []sfdpNode {
	n := len(nodes)
	if n == 0 {
		return nodes
	}
	out := make([]sfdpNode, n)
	copy(out, nodes)

	step := cfg.RepulsionK
	k := cfg.RepulsionK
	p := cfg.AttractionExponent
	if p == 0 {
		p = 2
	}

	for iter := 0; iter < iterations; iter++ {
		disp := make([]point, n)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := out[i].Pos.X - out[j].Pos.X
				dy := out[i].Pos.Y - out[j].Pos.Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-6 {
					dist = 1e-6
					dx, dy = 1, 0
				}
				force := (k * k) / dist
				fx, fy := force*dx/dist, force*dy/dist
				disp[i].X += fx
				disp[i].Y += fy
				disp[j].X -= fx
				disp[j].Y -= fy
			}
		}

		for _, e := range edges {
			dx := out[e.A].Pos.X - out[e.B].Pos.X
			dy := out[e.A].Pos.Y - out[e.B].Pos.Y
			dist := math.Hypot(dx, dy)
			if dist < 1e-6 {
				continue
			}
			force := math.Pow(dist, p) / k * e.Weight
			fx, fy := force*dx/dist, force*dy/dist
			disp[e.A].X -= fx
			disp[e.A].Y -= fy
			disp[e.B].X += fx
			disp[e.B].Y += fy
		}

		applyRigidGroups(out, disp)

		for i := range out {
			mag := math.Hypot(disp[i].X, disp[i].Y)
			if mag < 1e-9 {
				continue
			}
			capped := math.Min(mag, step)
			out[i].Pos.X += disp[i].X / mag * capped
			out[i].Pos.Y += disp[i].Y / mag * capped
		}

		step *= cfg.CoolingRate
		if step < 0.01 {
			break
		}
	}

	return out
}

// applyRigidGroups replaces each rigid-group member's individual
// displacement with the group's average displacement, so members
// translate together without deforming relative to one another.
func applyRigidGroups(nodes []sfdpNode, disp []point) {
	sums := map[int]point{}
	counts := map[int]int{}
	for i, n := range nodes {
		if n.RigidGroup < 0 {
			continue
		}
		s := sums[n.RigidGroup]
		s.X += disp[i].X
		s.Y += disp[i].Y
		sums[n.RigidGroup] = s
		counts[n.RigidGroup]++
	}
	for i, n := range nodes {
		if n.RigidGroup < 0 {
			continue
		}
		c := counts[n.RigidGroup]
		if c == 0 {
			continue
		}
		disp[i] = point{X: sums[n.RigidGroup].X / float64(c), Y: sums[n.RigidGroup].Y / float64(c)}
	}
}
