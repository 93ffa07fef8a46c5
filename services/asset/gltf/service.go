package gltfasset

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/trezcool/masomo-ar/core/arsession"
	"github.com/trezcool/masomo-ar/core/scene"
)

var identityMatrix = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// service fetches glTF 2.0 assets over HTTP and converts them to scene
// nodes. Only transforms and POSITION accessor bounds are carried over;
// actual geometry stays with the platform renderer.
type service struct {
	client *http.Client
}

var _ arsession.AssetLoader = (*service)(nil)

func NewService(client *http.Client) arsession.AssetLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &service{client: client}
}

func (svc *service) Load(ctx context.Context, assetURL string) (*scene.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building asset request")
	}

	resp, err := svc.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching asset")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching asset: unexpected status %d", resp.StatusCode)
	}

	doc := new(gltf.Document)
	if err = gltf.NewDecoder(resp.Body).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "parsing glTF document")
	}
	return buildRoot(doc, assetURL), nil
}

func buildRoot(doc *gltf.Document, assetURL string) *scene.Node {
	root := scene.NewNode(assetName(assetURL))

	var nodes []uint32
	switch {
	case doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes):
		nodes = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		nodes = doc.Scenes[0].Nodes
	}
	for _, ni := range nodes {
		if child := buildNode(doc, ni); child != nil {
			root.Add(child)
		}
	}
	return root
}

func buildNode(doc *gltf.Document, ni uint32) *scene.Node {
	if int(ni) >= len(doc.Nodes) {
		return nil
	}
	gn := doc.Nodes[ni]

	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node-%d", ni)
	}
	node := scene.NewNode(name)

	if gn.Matrix != identityMatrix {
		node.SetMatrix(mgl64.Mat4(gn.Matrix))
	} else {
		node.Position = mgl64.Vec3{gn.Translation[0], gn.Translation[1], gn.Translation[2]}
		// glTF rotations are [x, y, z, w]
		node.Rotation = mgl64.Quat{
			W: gn.Rotation[3],
			V: mgl64.Vec3{gn.Rotation[0], gn.Rotation[1], gn.Rotation[2]},
		}.Normalize()
		node.Scale = mgl64.Vec3{gn.Scale[0], gn.Scale[1], gn.Scale[2]}
	}

	if gn.Mesh != nil && int(*gn.Mesh) < len(doc.Meshes) {
		if mesh := buildMesh(doc, doc.Meshes[*gn.Mesh]); mesh != nil {
			node.Mesh = mesh
		}
	}
	for _, ci := range gn.Children {
		if child := buildNode(doc, ci); child != nil {
			node.Add(child)
		}
	}
	return node
}

// buildMesh derives the mesh bounds from the POSITION accessor min/max of
// each primitive; the glTF format requires them for POSITION.
func buildMesh(doc *gltf.Document, gm *gltf.Mesh) *scene.Mesh {
	b := scene.EmptyBox()
	for _, prim := range gm.Primitives {
		ai, ok := prim.Attributes[gltf.POSITION]
		if !ok || int(ai) >= len(doc.Accessors) {
			continue
		}
		acc := doc.Accessors[ai]
		if len(acc.Min) != 3 || len(acc.Max) != 3 {
			continue
		}
		b = b.Union(scene.NewBox(
			mgl64.Vec3{acc.Min[0], acc.Min[1], acc.Min[2]},
			mgl64.Vec3{acc.Max[0], acc.Max[1], acc.Max[2]},
		))
	}
	if b.Empty() {
		return nil
	}
	return &scene.Mesh{Name: gm.Name, Bounds: b}
}

func assetName(assetURL string) string {
	if u, err := url.Parse(assetURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return "asset"
}
