package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/dynamics"
)

// mover is the part of a mobile skeleton the resolver moves for a contact on node. Skeletons with
// a free root are pushed as a whole through the root transform; other skeletons are pushed through
// the reduced coordinates of node's chain.
type mover struct {
	node *dynamics.BodyNode
	root *dynamics.BodyNode
	free *dynamics.FreeJoint
}

// movable returns the mover for a contact on b, or false when b behaves like a static obstacle.
func movable(b *dynamics.BodyNode) (mover, bool) {
	if b == nil || !b.Skeleton().IsMobile() {
		return mover{}, false
	}
	root := b
	for root.Parent() != nil {
		root = root.Parent()
	}
	if fj, ok := root.ParentJoint().(*dynamics.FreeJoint); ok {
		return mover{node: b, root: root, free: fj}, true
	}
	if !dynamics.HasReducedDofs(b) {
		return mover{}, false
	}
	return mover{node: b, root: root}, true
}

func (m mover) mass() float64 {
	return m.node.Skeleton().Mass()
}

func (m mover) push(p, delta r3.Vec) {
	if m.free != nil {
		shift(m.free, m.root, delta)
		return
	}
	dynamics.PushPoint(m.node, p, delta)
}

// stop removes the velocity against the outward normal n.
func (m mover) stop(p, n r3.Vec, mu float64) {
	if m.free != nil {
		stopInto(m.free, m.root, n, mu)
		return
	}
	dynamics.StopPoint(m.node, p, n, mu)
}

// Resolve pushes overlapping bodies apart along the contact normal, split by mass like the
// minimum-penetration response, then removes the approaching normal velocity and applies
// Coulomb-limited friction to the tangential velocity.
func Resolve(res Result) {
	for _, c := range res.Contacts {
		ma, okA := movable(c.A.BodyNode())
		mb, okB := movable(c.B.BodyNode())
		if !okA && !okB {
			continue
		}

		var moveA, moveB float64
		switch {
		case !okA:
			moveB = c.Depth
		case !okB:
			moveA = -c.Depth
		default:
			wa, wb := 0.5, 0.5
			if total := ma.mass() + mb.mass(); total > 0 {
				wa, wb = ma.mass()/total, mb.mass()/total
			}
			moveA = -c.Depth * wb
			moveB = c.Depth * wa
		}
		if okA {
			ma.push(c.Point, r3.Scale(moveA, c.Normal))
		}
		if okB {
			mb.push(c.Point, r3.Scale(moveB, c.Normal))
		}

		mu := math.Sqrt(math.Max(c.A.Friction, 0) * math.Max(c.B.Friction, 0))
		if okA {
			ma.stop(c.Point, r3.Scale(-1, c.Normal), mu)
		}
		if okB {
			mb.stop(c.Point, c.Normal, mu)
		}
	}
}

func shift(j *dynamics.FreeJoint, b *dynamics.BodyNode, delta r3.Vec) {
	tf := b.Transform()
	tf.Translation = r3.Add(tf.Translation, delta)
	j.SetTransform(tf)
}

// stopInto removes the velocity component against the outward normal n and scales down the
// tangential part by at most mu times the removed normal speed.
func stopInto(j *dynamics.FreeJoint, b *dynamics.BodyNode, n r3.Vec, mu float64) {
	v := b.LinearVelocity()
	vn := r3.Dot(v, n)
	if vn >= 0 {
		return
	}
	v = r3.Sub(v, r3.Scale(vn, n))
	if speed := r3.Norm(v); speed > 0 {
		reduce := math.Min(speed, -vn*mu)
		v = r3.Scale((speed-reduce)/speed, v)
	}
	tf := b.Transform()
	dq := j.Velocities()
	vb := tf.RotateInv(v)
	dq[3], dq[4], dq[5] = vb.X, vb.Y, vb.Z
	j.SetVelocities(dq)
}
