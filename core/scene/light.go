package scene

import "github.com/go-gl/mathgl/mgl64"

const (
	LightHemisphere  LightKind = "hemisphere"
	LightDirectional LightKind = "directional"
)

type (
	LightKind string

	Light struct {
		Kind        LightKind
		Intensity   float64
		Color       mgl64.Vec3
		GroundColor mgl64.Vec3 // hemisphere only
	}
)

// NewLightRig returns the fixed two-light rig used for every placed asset:
// a hemisphere fill and a directional key. No per-asset light authoring.
func NewLightRig() *Node {
	rig := NewNode("lights")

	hemi := NewNode("lights/hemisphere")
	hemi.Light = &Light{
		Kind:        LightHemisphere,
		Intensity:   1,
		Color:       mgl64.Vec3{1, 1, 1},
		GroundColor: mgl64.Vec3{0.27, 0.27, 0.27},
	}

	dir := NewNode("lights/directional")
	dir.Light = &Light{
		Kind:      LightDirectional,
		Intensity: 0.8,
		Color:     mgl64.Vec3{1, 1, 1},
	}
	dir.Position = mgl64.Vec3{0.5, 1, 0.25}

	rig.Add(hemi, dir)
	return rig
}
