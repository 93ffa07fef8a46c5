package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// reticle dimensions (length-units)
const (
	reticleInnerRadius = 0.15
	reticleOuterRadius = 0.2
	reticleDotRadius   = 0.05
	reticleThickness   = 1e-3
)

// NewReticle builds the placement marker: a flat annulus with a small solid
// centre dot, laid flat (rotated from the XY plane onto XZ). It starts
// hidden and its transform is fully externally driven from hit-test poses.
func NewReticle() *Node {
	flat := mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})

	ring := NewNode("reticle/ring")
	ring.Mesh = &Mesh{Name: "annulus", Bounds: discBounds(reticleOuterRadius)}
	ring.Rotation = flat

	dot := NewNode("reticle/dot")
	dot.Mesh = &Mesh{Name: "disc", Bounds: discBounds(reticleDotRadius)}
	dot.Rotation = flat

	reticle := NewNode("reticle")
	reticle.Visible = false
	reticle.Add(ring, dot)
	return reticle
}

func discBounds(r float64) Box3 {
	return NewBox(
		mgl64.Vec3{-r, -r, -reticleThickness},
		mgl64.Vec3{r, r, reticleThickness},
	)
}
