package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box3 is an axis-aligned bounding box. The zero value is NOT valid; use
// EmptyBox so unions work.
type Box3 struct {
	Min, Max mgl64.Vec3
}

func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

func NewBox(min, max mgl64.Vec3) Box3 {
	return Box3{Min: min, Max: max}
}

func (b Box3) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

func (b Box3) ExpandByPoint(p mgl64.Vec3) Box3 {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

func (b Box3) Union(o Box3) Box3 {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return b.ExpandByPoint(o.Min).ExpandByPoint(o.Max)
}

func (b Box3) Size() mgl64.Vec3 {
	if b.Empty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

func (b Box3) Center() mgl64.Vec3 {
	if b.Empty() {
		return mgl64.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// MaxDim returns the length of the box's longest axis.
func (b Box3) MaxDim() float64 {
	s := b.Size()
	return math.Max(s.X(), math.Max(s.Y(), s.Z()))
}

// Transform returns the AABB of the box's 8 corners under m.
func (b Box3) Transform(m mgl64.Mat4) Box3 {
	if b.Empty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		c := mgl64.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			c[0] = b.Max.X()
		}
		if i&2 != 0 {
			c[1] = b.Max.Y()
		}
		if i&4 != 0 {
			c[2] = b.Max.Z()
		}
		out = out.ExpandByPoint(mgl64.TransformCoordinate(c, m))
	}
	return out
}

// Bounds computes the world-space bounding box of a node hierarchy.
func Bounds(n *Node) Box3 {
	return bounds(n, mgl64.Ident4())
}

func bounds(n *Node, parent mgl64.Mat4) Box3 {
	world := parent.Mul4(n.Matrix())
	b := EmptyBox()
	if n.Mesh != nil {
		b = b.Union(n.Mesh.Bounds.Transform(world))
	}
	for _, child := range n.Children {
		b = b.Union(bounds(child, world))
	}
	return b
}

// Normalize rescales n uniformly so the longest axis of its bounding box
// equals target, and recentres it about the bounding-box centre. Returns the
// applied scale factor (0 if the node has no measurable bounds).
func Normalize(n *Node, target float64) float64 {
	b := Bounds(n)
	maxDim := b.MaxDim()
	if b.Empty() || maxDim == 0 {
		return 0
	}
	s := target / maxDim
	n.Scale = mgl64.Vec3{s, s, s}
	n.Position = b.Center().Mul(-s)
	return s
}
