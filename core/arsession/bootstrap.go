package arsession

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-ar/core"
	"github.com/trezcool/masomo-ar/core/scene"
)

// defaultStepTimeout bounds every platform/network call during bootstrap so
// a hung platform call cannot block startup indefinitely.
const defaultStepTimeout = 10 * time.Second

type (
	// Bootstrapper negotiates immersive AR sessions. It owns the graphics
	// context so a context can be reused across session attempts on the
	// same rendering surface.
	Bootstrapper struct {
		platform Platform
		gfx      GraphicsContext
		render   Renderer
		loader   AssetLoader
		logger   core.Logger

		stepTimeout time.Duration
	}

	BootstrapperDeps struct {
		Platform Platform
		Gfx      GraphicsContext
		Renderer Renderer
		Loader   AssetLoader
		Logger   core.Logger

		// StepTimeout overrides the per-step bootstrap timeout; zero means
		// the default.
		StepTimeout time.Duration
	}
)

func NewBootstrapper(deps BootstrapperDeps) *Bootstrapper {
	timeout := deps.StepTimeout
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}
	return &Bootstrapper{
		platform:    deps.Platform,
		gfx:         deps.Gfx,
		render:      deps.Renderer,
		loader:      deps.Loader,
		logger:      deps.Logger,
		stepTimeout: timeout,
	}
}

// Start runs the bootstrap sequence strictly in order; no step starts if an
// earlier one failed, and a failure releases everything acquired so far
// before returning. A successful Start leaves the frame loop running.
func (b *Bootstrapper) Start(ctx context.Context, assetURL string, events Events) (st *State, err error) {
	// 1. capability check
	sctx, cancel := context.WithTimeout(ctx, b.stepTimeout)
	supported, err := b.platform.SupportsSession(sctx, ModeImmersiveAR)
	cancel()
	if err != nil || !supported {
		return nil, errors.Wrap(ErrUnsupportedPlatform, "checking immersive AR capability")
	}

	// 2. session request, declaring exactly the required spatial features
	sctx, cancel = context.WithTimeout(ctx, b.stepTimeout)
	sess, err := b.platform.RequestSession(sctx, ModeImmersiveAR, FeatureLocalSpace, FeatureHitTest)
	cancel()
	if err != nil {
		return nil, wrapBootstrapErr(ErrSessionRequestFailed, err, "requesting session")
	}
	defer func() {
		if err != nil {
			_ = sess.End()
			b.gfx.Release()
		}
	}()

	// 3. graphics context provisioning; must precede reference-space
	// requests because the platform may require a render configuration
	// to exist first
	layer, err := b.provisionGraphics(ctx, sess)
	if err != nil {
		return nil, wrapBootstrapErr(ErrSessionRequestFailed, err, "provisioning graphics context")
	}

	// 4. scene setup
	assetNode, assetScale, root, reticle, err := b.buildScene(ctx, assetURL)
	if err != nil {
		return nil, wrapBootstrapErr(ErrAssetLoadFailed, err, "loading asset")
	}

	// 5. reference-frame acquisition: viewer (hit-test ray origin) and
	// local (stable frame for rendering and hit results)
	sctx, cancel = context.WithTimeout(ctx, b.stepTimeout)
	viewerSpace, err := sess.RequestReferenceSpace(sctx, SpaceViewer)
	cancel()
	if err != nil {
		return nil, wrapBootstrapErr(ErrReferenceSpaceUnavailable, err, "requesting viewer space")
	}
	sctx, cancel = context.WithTimeout(ctx, b.stepTimeout)
	localSpace, err := sess.RequestReferenceSpace(sctx, SpaceLocal)
	cancel()
	if err != nil {
		return nil, wrapBootstrapErr(ErrReferenceSpaceUnavailable, err, "requesting local space")
	}

	// 6. hit-test source bound to the viewer frame
	sctx, cancel = context.WithTimeout(ctx, b.stepTimeout)
	hitSource, err := sess.RequestHitTestSource(sctx, viewerSpace)
	cancel()
	if err != nil {
		return nil, wrapBootstrapErr(ErrReferenceSpaceUnavailable, err, "creating hit-test source")
	}

	st = newState(stateDeps{
		session:     sess,
		gfx:         b.gfx,
		layer:       layer,
		render:      b.render,
		viewerSpace: viewerSpace,
		localSpace:  localSpace,
		hitSource:   hitSource,
		root:        root,
		asset:       assetNode,
		reticle:     reticle,
		assetScale:  assetScale,
		events:      events,
		logger:      b.logger,
	})

	// 7. input wiring: primary action + redundant pointer path
	sess.OnSelect(st.CommitPlacement)
	b.gfx.OnPointerDown(st.CommitPlacement)
	sess.OnEnd(st.handleEnd)

	// 8. frame loop
	st.requestNextFrame()
	return st, nil
}

func (b *Bootstrapper) provisionGraphics(ctx context.Context, sess Session) (Layer, error) {
	sctx, cancel := context.WithTimeout(ctx, b.stepTimeout)
	defer cancel()

	if err := b.gfx.MakeSessionCompatible(sctx, sess); err != nil {
		return nil, errors.Wrap(err, "flagging context session-compatible")
	}
	layer, err := b.gfx.CreateLayer(sess)
	if err != nil {
		return nil, errors.Wrap(err, "creating layer")
	}
	if err = sess.SetRenderState(layer); err != nil {
		return nil, errors.Wrap(err, "binding layer into render state")
	}
	return layer, nil
}

// buildScene loads and normalizes the asset and assembles the scene graph:
// light rig, reticle and the (hidden) asset.
func (b *Bootstrapper) buildScene(ctx context.Context, assetURL string) (asset *scene.Node, assetScale float64, root, reticle *scene.Node, err error) {
	sctx, cancel := context.WithTimeout(ctx, b.stepTimeout)
	defer cancel()

	asset, err = b.loader.Load(sctx, assetURL)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	assetScale = scene.Normalize(asset, assetTargetSize)
	asset.Visible = false

	reticle = scene.NewReticle()

	root = scene.NewNode("root")
	root.Add(scene.NewLightRig(), reticle, asset)
	return asset, assetScale, root, reticle, nil
}

func wrapBootstrapErr(sentinel, cause error, msg string) error {
	return errors.Wrap(sentinel, msg+": "+cause.Error())
}
