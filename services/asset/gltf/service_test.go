package gltfasset

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const minimalDoc = `{
	"asset": {"version": "2.0"},
	"scene": 0,
	"scenes": [{"nodes": [0]}],
	"nodes": [
		{"name": "torso", "translation": [0, 1, 0], "scale": [2, 2, 2], "mesh": 0, "children": [1]},
		{"name": "head", "rotation": [0, 0.7071067811865476, 0, 0.7071067811865476]}
	],
	"meshes": [{"name": "box", "primitives": [{"attributes": {"POSITION": 0}}]}],
	"accessors": [{"componentType": 5126, "count": 8, "type": "VEC3", "min": [-1, -1, -1], "max": [1, 1, 1]}]
}`

func Test_service_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(minimalDoc))
	}))
	defer srv.Close()

	svc := NewService(srv.Client())
	root, err := svc.Load(context.Background(), srv.URL+"/models/skeleton.gltf")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if root.Name != "skeleton.gltf" {
		t.Errorf("root name = %q; want skeleton.gltf", root.Name)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d; want 1", len(root.Children))
	}

	torso := root.Children[0]
	if torso.Name != "torso" {
		t.Errorf("node name = %q; want torso", torso.Name)
	}
	if want := (mgl64.Vec3{0, 1, 0}); torso.Position != want {
		t.Errorf("torso position = %v; want %v", torso.Position, want)
	}
	if want := (mgl64.Vec3{2, 2, 2}); torso.Scale != want {
		t.Errorf("torso scale = %v; want %v", torso.Scale, want)
	}
	if torso.Mesh == nil {
		t.Fatal("torso has no mesh bounds")
	}
	if want := (mgl64.Vec3{-1, -1, -1}); torso.Mesh.Bounds.Min != want {
		t.Errorf("mesh bounds min = %v; want %v", torso.Mesh.Bounds.Min, want)
	}
	if want := (mgl64.Vec3{1, 1, 1}); torso.Mesh.Bounds.Max != want {
		t.Errorf("mesh bounds max = %v; want %v", torso.Mesh.Bounds.Max, want)
	}

	if len(torso.Children) != 1 {
		t.Fatalf("torso children = %d; want 1", len(torso.Children))
	}
	head := torso.Children[0]

	// glTF [x y z w] quaternion mapped over: a 90 degree turn about Y
	want := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	if math.Abs(head.Rotation.Dot(want)) < 1-1e-9 {
		t.Errorf("head rotation = %v; want %v", head.Rotation, want)
	}
	if head.Mesh != nil {
		t.Error("head unexpectedly has mesh bounds")
	}
}

func Test_service_Load_badResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
		},
		{
			name:    "not a glTF document",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>lol</html>")) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			if _, err := NewService(srv.Client()).Load(context.Background(), srv.URL); err == nil {
				t.Error("Load() succeeded; want error")
			}
		})
	}
}
