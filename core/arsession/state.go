package arsession

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/trezcool/masomo-ar/core"
	"github.com/trezcool/masomo-ar/core/scene"
)

// placement design constants (length-units / radians)
const (
	// longest bounding-box axis of a normalized asset
	assetTargetSize = 0.3

	// upward offset applied on commit so the asset does not clip into the
	// detected surface
	placementLift = 0.02

	// per-frame idle-spin increment around the vertical axis while placed
	spinStep = 0.01
)

type (
	// Events surfaces session milestones to the embedding UI. Explicit
	// callbacks, not ambient global state; nil fields are skipped.
	Events struct {
		OnPlaced func()
		OnEnded  func()
	}

	// State holds everything one active AR session owns: the session
	// handle, reference spaces, hit-test source, graphics resources and
	// the scene. It is confined to the platform's frame-callback thread
	// and is not safe for concurrent use. It is not reusable after End.
	State struct {
		ID string

		session Session
		gfx     GraphicsContext
		layer   Layer
		render  Renderer

		viewerSpace ReferenceSpace
		localSpace  ReferenceSpace
		hitSource   HitTestSource

		root    *scene.Node
		asset   *scene.Node
		reticle *scene.Node
		cam     *scene.Camera

		// fixed display scale applied on every commit
		assetScale float64

		reticlePose  *mgl64.Mat4
		placed       bool
		ended        bool
		frameCounter uint64

		events Events
		logger core.Logger
	}
)

func newState(deps stateDeps) *State {
	return &State{
		ID:          uuid.New().String(),
		session:     deps.session,
		gfx:         deps.gfx,
		layer:       deps.layer,
		render:      deps.render,
		viewerSpace: deps.viewerSpace,
		localSpace:  deps.localSpace,
		hitSource:   deps.hitSource,
		root:        deps.root,
		asset:       deps.asset,
		reticle:     deps.reticle,
		cam:         scene.NewCamera(),
		assetScale:  deps.assetScale,
		events:      deps.events,
		logger:      deps.logger,
	}
}

type stateDeps struct {
	session     Session
	gfx         GraphicsContext
	layer       Layer
	render      Renderer
	viewerSpace ReferenceSpace
	localSpace  ReferenceSpace
	hitSource   HitTestSource
	root        *scene.Node
	asset       *scene.Node
	reticle     *scene.Node
	assetScale  float64
	events      Events
	logger      core.Logger
}

// Placed reports whether the asset has been anchored.
func (st *State) Placed() bool { return st.placed }

// Ended reports whether the session has been torn down.
func (st *State) Ended() bool { return st.ended }

// FrameCount reports how many frames have been processed.
func (st *State) FrameCount() uint64 { return st.frameCounter }

// CommitPlacement anchors the asset to the current reticle pose. A no-op
// when there is no current hit. Both the primary action and the redundant
// pointer path call this, so a doubly-delivered tap is harmless:
// re-committing against the same hit yields the same transform.
func (st *State) CommitPlacement() {
	if st.ended || st.reticlePose == nil {
		return
	}

	pos, rot, _ := scene.Decompose(*st.reticlePose)
	st.asset.Position = pos.Add(mgl64.Vec3{0, placementLift, 0})
	st.asset.Rotation = rot
	st.asset.Scale = mgl64.Vec3{st.assetScale, st.assetScale, st.assetScale}
	st.asset.Visible = true

	if !st.placed {
		st.placed = true
		if st.events.OnPlaced != nil {
			st.events.OnPlaced()
		}
	}
}

// End terminates the session. Cleanup runs in the session-end handler, not
// here, so a platform-initiated end takes the same path.
func (st *State) End() error {
	if st.ended {
		return nil
	}
	return st.session.End()
}

// handleEnd releases all per-session resources. Terminal.
func (st *State) handleEnd() {
	if st.ended {
		return
	}
	st.ended = true

	if st.hitSource != nil {
		st.hitSource.Cancel()
		st.hitSource = nil
	}
	if st.gfx != nil {
		st.gfx.Release()
	}
	st.reticlePose = nil
	st.reticle.Visible = false

	if st.events.OnEnded != nil {
		st.events.OnEnded()
	}
}
