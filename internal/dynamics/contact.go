package dynamics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// dofRate is the world velocity of a point produced by a unit rate of one reduced DOF.
type dofRate struct {
	joint Joint
	dof   int
	rate  r3.Vec
}

// chainRates lists the reduced DOFs on the path from the root to b, root first, with the velocity
// each gives the world point p. Free joints are skipped.
func chainRates(b *BodyNode, p r3.Vec) []dofRate {
	var chain []*BodyNode
	for n := b; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	var out []dofRate
	for i := len(chain) - 1; i >= 0; i-- {
		n := chain[i]
		if _, ok := n.joint.(*FreeJoint); ok {
			continue
		}
		parentTf := Identity()
		if n.parent != nil {
			parentTf = n.parent.Transform()
		}
		axes, origin := worldScrews(n.joint, parentTf)
		r := r3.Sub(p, origin)
		for d, s := range axes {
			out = append(out, dofRate{joint: n.joint, dof: d, rate: r3.Add(s.V, r3.Cross(s.W, r))})
		}
	}
	return out
}

// HasReducedDofs reports whether any non-free joint between the root and b can move b.
func HasReducedDofs(b *BodyNode) bool {
	for n := b; n != nil; n = n.parent {
		if _, ok := n.joint.(*FreeJoint); !ok && n.joint.NumDofs() > 0 {
			return true
		}
	}
	return false
}

// projected returns n·rate per DOF and the sum of their squares.
func projected(rates []dofRate, n r3.Vec) ([]float64, float64) {
	jn := make([]float64, len(rates))
	sum := 0.0
	for i, r := range rates {
		jn[i] = r3.Dot(n, r.rate)
		sum += jn[i] * jn[i]
	}
	return jn, sum
}

// PushPoint moves the world point p of b by delta with the minimum-norm change of the reduced
// coordinates on b's chain. Joints integrate the change like a unit time step, so ball joints
// stay on their rotation manifold and limits are enforced. It reports false when no DOF moves p
// along delta.
func PushPoint(b *BodyNode, p, delta r3.Vec) bool {
	depth := r3.Norm(delta)
	if depth == 0 {
		return false
	}
	n := r3.Scale(1/depth, delta)
	rates := chainRates(b, p)
	jn, sum := projected(rates, n)
	if sum < 1e-12 {
		return false
	}

	saved := make(map[Joint][]float64)
	for i, r := range rates {
		jb := r.joint.base()
		if _, ok := saved[r.joint]; !ok {
			saved[r.joint] = append([]float64(nil), jb.dq...)
			clear(jb.dq)
		}
		jb.dq[r.dof] = jn[i] * depth / sum
	}
	for j, dq := range saved {
		j.advance(1)
		copy(j.base().dq, dq)
	}
	return true
}

// StopPoint removes the velocity of the world point p of b along -n through the reduced DOFs of
// b's chain, then scales down the tangential part by at most mu times the removed normal speed.
func StopPoint(b *BodyNode, p, n r3.Vec, mu float64) {
	rates := chainRates(b, p)
	jn, sum := projected(rates, n)
	if sum < 1e-12 {
		return
	}
	var v r3.Vec
	for _, r := range rates {
		v = r3.Add(v, r3.Scale(r.joint.base().dq[r.dof], r.rate))
	}
	vn := r3.Dot(v, n)
	if vn >= 0 {
		return
	}
	for i, r := range rates {
		r.joint.base().dq[r.dof] -= jn[i] * vn / sum
	}

	vt := r3.Sub(v, r3.Scale(vn, n))
	speed := r3.Norm(vt)
	reduce := math.Min(speed, -vn*mu)
	if reduce <= 0 {
		return
	}
	jt, sumT := projected(rates, r3.Scale(1/speed, vt))
	if sumT < 1e-12 {
		return
	}
	for i, r := range rates {
		r.joint.base().dq[r.dof] -= jt[i] * reduce / sumT
	}
}
