package arsession

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Report is a read-only capability snapshot intended for support/debugging,
// not for automated decision-making.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Platform    string    `json:"platform"`

	ImmersiveARSupported bool                 `json:"immersive_ar_supported"`
	ReferenceSpaces      []ReferenceSpaceType `json:"reference_spaces"`
	CameraPermission     PermissionState      `json:"camera_permission"`
	// CameraProbe holds the live camera-access probe outcome: "ok" or the
	// error text.
	CameraProbe string `json:"camera_probe"`
}

// Diagnose probes the platform's AR capabilities. Individual probe failures
// are recorded in the report rather than propagated.
func Diagnose(ctx context.Context, p Platform) Report {
	rpt := Report{
		ID:               uuid.New().String(),
		GeneratedAt:      time.Now().UTC(),
		Platform:         p.Name(),
		CameraPermission: PermissionUnknown,
	}

	if supported, err := p.SupportsSession(ctx, ModeImmersiveAR); err == nil {
		rpt.ImmersiveARSupported = supported
	}
	if spaces, err := p.SupportedReferenceSpaces(ctx); err == nil {
		rpt.ReferenceSpaces = spaces
	}
	if state, err := p.CameraPermission(ctx); err == nil {
		rpt.CameraPermission = state
	}
	if err := p.ProbeCamera(ctx); err != nil {
		rpt.CameraProbe = err.Error()
	} else {
		rpt.CameraProbe = "ok"
	}
	return rpt
}
