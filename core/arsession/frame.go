package arsession

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// requestNextFrame arms the next frame callback. The platform invokes the
// callback once per display refresh; the loop stops if nobody re-arms it.
func (st *State) requestNextFrame() {
	st.session.RequestFrame(st.onFrame)
}

// onFrame is the per-frame state machine. It re-arms itself BEFORE doing any
// work and recovers from panics, so a single bad frame can never silently
// terminate the AR experience; only End or the platform end event stops the
// loop.
func (st *State) onFrame(at time.Duration, frame Frame) {
	if st.ended {
		return
	}
	st.requestNextFrame()

	defer func() {
		if r := recover(); r != nil {
			st.logger.Error(fmt.Sprintf("frame %d processing failed: %v", st.frameCounter, r))
		}
	}()

	st.frameCounter++
	st.updateHitTest(frame)
	if st.placed {
		st.spin()
	}
	st.renderViews(frame)
}

// updateHitTest drives the scanning/detected states: the reticle tracks the
// newest hit pose and simply disappears again when no hit is returned. No
// hysteresis.
func (st *State) updateHitTest(frame Frame) {
	results := frame.HitTestResults(st.hitSource)
	if len(results) > 0 {
		if pose, ok := results[0].Pose(st.localSpace); ok {
			st.reticle.SetMatrix(pose)
			st.reticle.Visible = true
			st.reticlePose = &pose
			return
		}
	}
	st.reticle.Visible = false
	st.reticlePose = nil
}

// spin applies the constant idle rotation around the asset's vertical axis.
func (st *State) spin() {
	st.asset.Rotation = st.asset.Rotation.Mul(mgl64.QuatRotate(spinStep, mgl64.Vec3{0, 1, 0})).Normalize()
}

// renderViews renders the scene once per platform-reported view into that
// view's sub-rectangle of the shared framebuffer. The renderer knows nothing
// about multi-view stereo: the framebuffer is explicitly rebound, its size
// resynchronized every frame, and camera matrices injected per call.
func (st *State) renderViews(frame Frame) {
	pose, ok := frame.ViewerPose(st.localSpace)
	if !ok {
		return // tracking lost for this frame
	}

	st.gfx.BindFramebuffer(st.layer)
	w, h := st.layer.FramebufferSize()
	st.render.SetSize(w, h)

	for _, view := range pose.Views {
		st.gfx.SetViewport(st.layer.Viewport(view))
		st.cam.World = view.Transform.Inv()
		st.cam.Projection = view.Projection
		st.render.Render(st.root, st.cam)
	}
}
