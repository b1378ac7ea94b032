package reportctrl

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"libraryms/model"
	reportsvc "libraryms/service/report"
)

type Controller struct {
	Svc reportsvc.Service
	Log *slog.Logger
}

// GET /v1/reports?range=this-month|last-month|this-year|all-time  (admin)
func (h *Controller) Stats(c echo.Context) error {
	role, _ := c.Get("role").(string)
	if model.Role(role) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}

	stats, err := h.Svc.Stats(c.Request().Context(), reportsvc.Range(c.QueryParam("range")), time.Now().UTC())
	if err != nil {
		if reportsvc.Code(err) == reportsvc.ErrInvalidRange {
			return c.JSON(http.StatusBadRequest, echo.Map{"code": string(reportsvc.ErrInvalidRange), "message": "unknown range"})
		}
		h.Log.Error("report stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": "INTERNAL", "message": "internal error"})
	}
	return c.JSON(http.StatusOK, stats)
}
