package scene

import "github.com/go-gl/mathgl/mgl64"

// Compose builds a transform from position, rotation and scale, applied in
// the usual T*R*S order.
func Compose(pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	t := mgl64.Translate3D(pos.X(), pos.Y(), pos.Z())
	s := mgl64.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(rot.Mat4()).Mul4(s)
}

// Decompose splits a transform into position, rotation and scale.
// Assumes no shear; a negative determinant flips the X scale.
func Decompose(m mgl64.Mat4) (pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) {
	pos = m.Col(3).Vec3()

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Det() < 0 {
		sx = -sx
	}
	scale = mgl64.Vec3{sx, sy, sz}

	rm := mgl64.Ident4()
	if sx != 0 {
		rm.SetCol(0, m.Col(0).Mul(1/sx))
	}
	if sy != 0 {
		rm.SetCol(1, m.Col(1).Mul(1/sy))
	}
	if sz != 0 {
		rm.SetCol(2, m.Col(2).Mul(1/sz))
	}
	rot = mgl64.Mat4ToQuat(rm).Normalize()
	return pos, rot, scale
}
