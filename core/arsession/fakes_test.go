package arsession

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trezcool/masomo-ar/core/scene"
)

// In-memory platform doubles. Error fields default to nil so the zero-ish
// fakes model a fully capable device.

type fakePlatform struct {
	name       string
	supported  bool
	supportErr error
	session    *fakeSession
	sessionErr error
	spaces     []ReferenceSpaceType
	spacesErr  error
	camPerm    PermissionState
	camPermErr error
	probeErr   error

	sessionCalls int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		name:      "fake-device",
		supported: true,
		session:   newFakeSession(),
		spaces:    []ReferenceSpaceType{SpaceViewer, SpaceLocal},
		camPerm:   PermissionGranted,
	}
}

func (p *fakePlatform) Name() string { return p.name }

func (p *fakePlatform) SupportsSession(ctx context.Context, mode SessionMode) (bool, error) {
	return p.supported && mode == ModeImmersiveAR, p.supportErr
}

func (p *fakePlatform) RequestSession(ctx context.Context, mode SessionMode, features ...Feature) (Session, error) {
	p.sessionCalls++
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	p.session.features = features
	return p.session, nil
}

func (p *fakePlatform) SupportedReferenceSpaces(ctx context.Context) ([]ReferenceSpaceType, error) {
	return p.spaces, p.spacesErr
}

func (p *fakePlatform) CameraPermission(ctx context.Context) (PermissionState, error) {
	return p.camPerm, p.camPermErr
}

func (p *fakePlatform) ProbeCamera(ctx context.Context) error { return p.probeErr }

type fakeSession struct {
	features   []Feature
	layer      Layer
	refSpcErrs map[ReferenceSpaceType]error
	hitSrc     *fakeHitSource
	hitSrcErr  error

	pendingCb FrameCallback
	selectFn  func()
	endFn     func()
	ended     bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		refSpcErrs: make(map[ReferenceSpaceType]error),
		hitSrc:     &fakeHitSource{},
	}
}

func (s *fakeSession) SetRenderState(layer Layer) error {
	s.layer = layer
	return nil
}

func (s *fakeSession) RequestReferenceSpace(ctx context.Context, typ ReferenceSpaceType) (ReferenceSpace, error) {
	if err := s.refSpcErrs[typ]; err != nil {
		return nil, err
	}
	return fakeRefSpace{typ: typ}, nil
}

func (s *fakeSession) RequestHitTestSource(ctx context.Context, space ReferenceSpace) (HitTestSource, error) {
	if s.hitSrcErr != nil {
		return nil, s.hitSrcErr
	}
	return s.hitSrc, nil
}

func (s *fakeSession) RequestFrame(cb FrameCallback) { s.pendingCb = cb }
func (s *fakeSession) OnSelect(fn func())            { s.selectFn = fn }
func (s *fakeSession) OnEnd(fn func())               { s.endFn = fn }

func (s *fakeSession) End() error {
	s.ended = true
	if s.endFn != nil {
		s.endFn()
	}
	return nil
}

// deliver fires the pending frame callback the way the platform would.
func (s *fakeSession) deliver(at time.Duration, frame Frame) bool {
	cb := s.pendingCb
	if cb == nil {
		return false
	}
	s.pendingCb = nil
	cb(at, frame)
	return true
}

type fakeRefSpace struct{ typ ReferenceSpaceType }

func (r fakeRefSpace) Type() ReferenceSpaceType { return r.typ }

type fakeHitSource struct{ cancelled bool }

func (h *fakeHitSource) Cancel() { h.cancelled = true }

type fakeFrame struct {
	hits   []HitResult
	pose   ViewerPose
	poseOK bool
}

func (f *fakeFrame) ViewerPose(space ReferenceSpace) (ViewerPose, bool) {
	return f.pose, f.poseOK
}

func (f *fakeFrame) HitTestResults(src HitTestSource) []HitResult { return f.hits }

type fakeHitResult struct {
	m  mgl64.Mat4
	ok bool
}

func (h fakeHitResult) Pose(space ReferenceSpace) (mgl64.Mat4, bool) { return h.m, h.ok }

// hitFrameAt builds a one-view frame with a single hit at the given pose.
func hitFrameAt(pose mgl64.Mat4) *fakeFrame {
	return &fakeFrame{
		hits:   []HitResult{fakeHitResult{m: pose, ok: true}},
		pose:   singleView(),
		poseOK: true,
	}
}

func emptyFrame() *fakeFrame {
	return &fakeFrame{pose: singleView(), poseOK: true}
}

func singleView() ViewerPose {
	return ViewerPose{
		Transform: mgl64.Ident4(),
		Views: []View{
			{Eye: "none", Transform: mgl64.Ident4(), Projection: mgl64.Ident4()},
		},
	}
}

type fakeGfx struct {
	compatErr error
	createErr error
	layer     *fakeLayer

	released  bool
	binds     int
	viewports []Viewport
	pointerFn func()
}

func newFakeGfx() *fakeGfx {
	return &fakeGfx{layer: &fakeLayer{w: 1920, h: 1080}}
}

func (g *fakeGfx) MakeSessionCompatible(ctx context.Context, s Session) error { return g.compatErr }

func (g *fakeGfx) CreateLayer(s Session) (Layer, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.layer, nil
}

func (g *fakeGfx) BindFramebuffer(l Layer) { g.binds++ }
func (g *fakeGfx) SetViewport(vp Viewport) { g.viewports = append(g.viewports, vp) }
func (g *fakeGfx) OnPointerDown(fn func()) { g.pointerFn = fn }
func (g *fakeGfx) Release()                { g.released = true }

// fakeLayer splits the framebuffer into equal horizontal slots per eye.
type fakeLayer struct{ w, h int }

func (l *fakeLayer) FramebufferSize() (int, int) { return l.w, l.h }

func (l *fakeLayer) Viewport(v View) Viewport {
	if v.Eye == "right" {
		return Viewport{X: l.w / 2, Width: l.w / 2, Height: l.h}
	}
	if v.Eye == "left" {
		return Viewport{Width: l.w / 2, Height: l.h}
	}
	return Viewport{Width: l.w, Height: l.h}
}

type renderCall struct {
	root       *scene.Node
	world      mgl64.Mat4
	projection mgl64.Mat4
}

type fakeRenderer struct {
	sizes    [][2]int
	calls    []renderCall
	panicMsg string // panics once on the next Render when set
}

func (r *fakeRenderer) SetSize(w, h int) { r.sizes = append(r.sizes, [2]int{w, h}) }

func (r *fakeRenderer) Render(root *scene.Node, cam *scene.Camera) {
	if r.panicMsg != "" {
		msg := r.panicMsg
		r.panicMsg = ""
		panic(msg)
	}
	r.calls = append(r.calls, renderCall{root: root, world: cam.World, projection: cam.Projection})
}

type fakeLoader struct {
	node *scene.Node
	err  error
}

func (l *fakeLoader) Load(ctx context.Context, url string) (*scene.Node, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.node, nil
}

// newTestAsset is a 2x2x2 cube asset; Normalize brings it to targetSize/2.
func newTestAsset() *scene.Node {
	mesh := scene.NewNode("cube")
	mesh.Mesh = &scene.Mesh{Bounds: scene.NewBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})}

	asset := scene.NewNode("asset")
	asset.Add(mesh)
	return asset
}

type testDeps struct {
	platform *fakePlatform
	gfx      *fakeGfx
	render   *fakeRenderer
	loader   *fakeLoader
	logger   *capturingLogger
}

func newTestDeps() testDeps {
	return testDeps{
		platform: newFakePlatform(),
		gfx:      newFakeGfx(),
		render:   &fakeRenderer{},
		loader:   &fakeLoader{node: newTestAsset()},
		logger:   &capturingLogger{},
	}
}

func (d testDeps) bootstrapper() *Bootstrapper {
	return NewBootstrapper(BootstrapperDeps{
		Platform: d.platform,
		Gfx:      d.gfx,
		Renderer: d.render,
		Loader:   d.loader,
		Logger:   d.logger,
	})
}

type capturingLogger struct{ errors []string }

func (l *capturingLogger) Enable(bool)                        {}
func (l *capturingLogger) Debug(string, ...interface{})       {}
func (l *capturingLogger) Info(string, ...interface{})        {}
func (l *capturingLogger) Warn(string, ...interface{})        {}
func (l *capturingLogger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }
func (l *capturingLogger) Fatal(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }
