package scene

import "github.com/go-gl/mathgl/mgl64"

type (
	// Node is a minimal scene-graph node: a TRS transform, a visibility
	// flag and optionally a mesh or a light. Transforms are local to the
	// parent node.
	Node struct {
		Name     string
		Position mgl64.Vec3
		Rotation mgl64.Quat
		Scale    mgl64.Vec3
		Visible  bool

		Mesh  *Mesh
		Light *Light

		Children []*Node
	}

	// Mesh only carries the data the placement pipeline needs: its local
	// bounding box. Actual geometry lives with the platform renderer.
	Mesh struct {
		Name   string
		Bounds Box3
	}
)

func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
		Visible:  true,
	}
}

func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Matrix returns the node's local transform.
func (n *Node) Matrix() mgl64.Mat4 {
	return Compose(n.Position, n.Rotation, n.Scale)
}

// SetMatrix overwrites the node's TRS from a full transform.
func (n *Node) SetMatrix(m mgl64.Mat4) {
	n.Position, n.Rotation, n.Scale = Decompose(m)
}

// Camera is a plain matrix pair injected into the renderer once per view.
type Camera struct {
	World      mgl64.Mat4
	Projection mgl64.Mat4
}

func NewCamera() *Camera {
	return &Camera{World: mgl64.Ident4(), Projection: mgl64.Ident4()}
}
