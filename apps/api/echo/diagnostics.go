package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-ar/core"
	"github.com/trezcool/masomo-ar/core/arsession"
)

// diagnosticsApi ingests device capability reports for support/debugging.
// Reports are logged, never acted on.
type diagnosticsApi struct {
	logger core.Logger
}

func registerDiagnosticsAPI(g *echo.Group, deps ServerDeps) {
	api := diagnosticsApi{logger: deps.Logger}
	g.POST("/diagnostics", api.ingest)
}

func (api *diagnosticsApi) ingest(ctx echo.Context) error {
	var rpt arsession.Report
	if err := ctx.Bind(&rpt); err != nil {
		return errors.Wrap(err, "binding to Report")
	}

	api.logger.Info(fmt.Sprintf("device diagnostics %s (%s)", rpt.ID, rpt.Platform), map[string]interface{}{
		"immersive_ar_supported": rpt.ImmersiveARSupported,
		"reference_spaces":       rpt.ReferenceSpaces,
		"camera_permission":      rpt.CameraPermission,
		"camera_probe":           rpt.CameraProbe,
	})
	return ctx.NoContent(http.StatusAccepted)
}
