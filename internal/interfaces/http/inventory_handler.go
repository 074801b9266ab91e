package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almoxtrack-api/internal/application/dto"
	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// InventoryHandler maneja las operaciones del ledger: entradas, salidas, devoluciones y consultas.
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	query  *inventory.MovementQueryUseCase
	term   *inventory.ResponsibilityTermUseCase
	log    zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	ledger *inventory.LedgerUseCase,
	query *inventory.MovementQueryUseCase,
	term *inventory.ResponsibilityTermUseCase,
	log zerolog.Logger,
) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, query: query, term: term, log: log}
}

// Entry godoc
// @Summary      Finalizar entrada
// @Description  Suma las cantidades al stock y registra un movimiento Entry por línea, todo en una transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EntryRequest  true  "items, supplier, invoice, date"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) Entry(c *fiber.Ctx) error {
	var in dto.EntryRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.EntryFromRequest(c.UserContext(), GetEmail(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Exit godoc
// @Summary      Finalizar salida
// @Description  Falla completa con 409 si alguna línea dejaría el stock negativo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExitRequest  true  "items, requester, department, purpose, date"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/exits [post]
func (h *InventoryHandler) Exit(c *fiber.Ctx) error {
	var in dto.ExitRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.ExitFromRequest(c.UserContext(), GetEmail(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Return godoc
// @Summary      Finalizar devolución
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnRequest  true  "items, department, reason, date"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/returns [post]
func (h *InventoryHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.ReturnFromRequest(c.UserContext(), GetEmail(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Description  Fechas YYYY-MM-DD o RFC 3339; from se lleva al inicio del día y to al final.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        from           query  string  false  "Desde"
// @Param        to             query  string  false  "Hasta"
// @Param        type           query  string  false  "Entry | Exit | Return"
// @Param        department     query  string  false  "Departamento"
// @Param        material_type  query  string  false  "consumable | permanent"
// @Param        limit          query  int     false  "Límite"
// @Param        offset         query  int     false  "Offset"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	f, ok, err := movementFilter(c)
	if !ok {
		return err
	}
	list, err := h.query.ListMovements(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := inventory.ToMovementResponses(list)
	return c.JSON(dto.MovementListResponse{Items: items, Total: len(items)})
}

// ResponsibilityTerm godoc
// @Summary      Termo de responsabilidade de una salida
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        transactionId  path  string  true  "ID de la transacción de salida"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/exits/{transactionId}/term [get]
func (h *InventoryHandler) ResponsibilityTerm(c *fiber.Ctx) error {
	txID := c.Params("transactionId")
	pdf, err := h.term.GeneratePDF(c.UserContext(), txID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="termo-`+txID+`.pdf"`)
	return c.Send(pdf)
}

// movementFilter lee y valida los filtros comunes de movimientos y dashboard.
func movementFilter(c *fiber.Ctx) (repository.MovementFilter, bool, error) {
	var q dto.MovementQuery
	if ok, err := bindQuery(c, &q); !ok {
		return repository.MovementFilter{}, false, err
	}
	from, to, ok, err := parseRange(c, q.DateRangeQuery)
	if !ok {
		return repository.MovementFilter{}, false, err
	}
	return repository.MovementFilter{
		From:         from,
		To:           to,
		Type:         q.Type,
		Department:   q.Department,
		MaterialType: q.MaterialType,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}, true, nil
}
