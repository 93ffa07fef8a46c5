package arsession

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trezcool/masomo-ar/core/scene"
)

// Session modes and features declared when negotiating a session.
const (
	ModeImmersiveAR SessionMode = "immersive-ar"

	FeatureLocalSpace Feature = "local"
	FeatureHitTest    Feature = "hit-test"

	SpaceViewer ReferenceSpaceType = "viewer"
	SpaceLocal  ReferenceSpaceType = "local"

	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
	PermissionUnknown PermissionState = "unknown"
)

type (
	SessionMode        string
	Feature            string
	ReferenceSpaceType string
	PermissionState    string

	// Platform is the low-level immersive-session API: capability probing
	// and session negotiation. Implementations wrap whatever the host
	// device exposes.
	Platform interface {
		Name() string
		SupportsSession(ctx context.Context, mode SessionMode) (bool, error)
		RequestSession(ctx context.Context, mode SessionMode, features ...Feature) (Session, error)
		SupportedReferenceSpaces(ctx context.Context) ([]ReferenceSpaceType, error)
		CameraPermission(ctx context.Context) (PermissionState, error)
		// ProbeCamera attempts a live camera acquisition and releases it.
		ProbeCamera(ctx context.Context) error
	}

	// Session is a negotiated immersive session. It is owned exclusively by
	// one State; it is not reusable after End.
	Session interface {
		SetRenderState(layer Layer) error
		RequestReferenceSpace(ctx context.Context, typ ReferenceSpaceType) (ReferenceSpace, error)
		RequestHitTestSource(ctx context.Context, space ReferenceSpace) (HitTestSource, error)
		// RequestFrame schedules cb for the next display refresh. The loop
		// stops unless cb re-arms itself.
		RequestFrame(cb FrameCallback)
		// OnSelect registers the "primary action" handler.
		OnSelect(fn func())
		// OnEnd registers the session-end handler; also fired by End.
		OnEnd(fn func())
		End() error
	}

	ReferenceSpace interface {
		Type() ReferenceSpaceType
	}

	// HitTestSource is a standing surface query along the viewer ray,
	// re-evaluated every frame.
	HitTestSource interface {
		Cancel()
	}

	FrameCallback func(at time.Duration, frame Frame)

	// Frame is one platform-delivered frame's worth of tracking data.
	Frame interface {
		// ViewerPose reports the device pose and the views to render,
		// expressed in the given reference space.
		ViewerPose(space ReferenceSpace) (ViewerPose, bool)
		HitTestResults(src HitTestSource) []HitResult
	}

	ViewerPose struct {
		Transform mgl64.Mat4
		Views     []View
	}

	View struct {
		Eye        string
		Transform  mgl64.Mat4
		Projection mgl64.Mat4
	}

	HitResult interface {
		// Pose expresses the hit in the given reference space.
		Pose(space ReferenceSpace) (mgl64.Mat4, bool)
	}

	Viewport struct {
		X, Y, Width, Height int
	}

	// GraphicsContext is the rendering context bound into the session's
	// render configuration. One context is owned per State.
	GraphicsContext interface {
		MakeSessionCompatible(ctx context.Context, s Session) error
		CreateLayer(s Session) (Layer, error)
		// BindFramebuffer (re)binds the layer's shared framebuffer; must be
		// called before the per-view render pass of every frame.
		BindFramebuffer(l Layer)
		SetViewport(vp Viewport)
		// OnPointerDown registers a direct pointer/touch handler on the
		// rendering surface; redundant with Session.OnSelect because some
		// platforms deliver the primary action inconsistently.
		OnPointerDown(fn func())
		Release()
	}

	// Layer is the session-provided drawing surface. Its framebuffer size
	// can change between frames (e.g. on device rotation).
	Layer interface {
		FramebufferSize() (w, h int)
		Viewport(v View) Viewport
	}

	// Renderer is treated purely as a single-view rasterizer invoked once
	// per platform-reported view with camera matrices injected per call.
	Renderer interface {
		SetSize(w, h int)
		Render(root *scene.Node, cam *scene.Camera)
	}

	// AssetLoader fetches and parses a 3D asset into a scene node.
	AssetLoader interface {
		Load(ctx context.Context, url string) (*scene.Node, error)
	}
)
