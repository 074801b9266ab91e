package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/almoxtrack-api/internal/application/analytics"
	"github.com/rs/zerolog"
)

// DashboardHandler maneja el resumen del dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log zerolog.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetSummary godoc
// @Summary      Resumen del dashboard
// @Description  Mismos filtros que /api/inventory/movements. Sin fechas se usan los últimos 30 días.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        from           query  string  false  "Desde"
// @Param        to             query  string  false  "Hasta"
// @Param        type           query  string  false  "Entry | Exit | Return"
// @Param        department     query  string  false  "Departamento"
// @Param        material_type  query  string  false  "consumable | permanent"
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	f, ok, err := movementFilter(c)
	if !ok {
		return err
	}
	summary, err := h.uc.GetSummary(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(summary)
}
