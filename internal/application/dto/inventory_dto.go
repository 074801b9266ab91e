package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest una línea de un lote de movimientos.
type LineItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0,lte=2147483647"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// EntryRequest body para POST /api/inventory/entries.
type EntryRequest struct {
	Items    []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Date     *time.Time        `json:"date,omitempty"`
	Supplier string            `json:"supplier" validate:"required,max=200"`
	Invoice  string            `json:"invoice" validate:"required,max=100"`
}

// ExitRequest body para POST /api/inventory/exits.
type ExitRequest struct {
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Date       *time.Time        `json:"date,omitempty"`
	Requester  string            `json:"requester" validate:"required,max=200"`
	Department string            `json:"department" validate:"required,max=200"`
	Purpose    string            `json:"purpose" validate:"max=500"`
}

// ReturnRequest body para POST /api/inventory/returns.
type ReturnRequest struct {
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Date       *time.Time        `json:"date,omitempty"`
	Department string            `json:"department" validate:"required,max=200"`
	Reason     string            `json:"reason" validate:"required,oneof=unused excess defective other"`
}

// MovementResponse salida de un movimiento del ledger.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     string          `json:"product_id"`
	Date          time.Time       `json:"date"`
	Type          string          `json:"type"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Responsible   string          `json:"responsible"`
	Supplier      string          `json:"supplier,omitempty"`
	Invoice       string          `json:"invoice,omitempty"`
	Department    string          `json:"department,omitempty"`
	Requester     string          `json:"requester,omitempty"`
	Purpose       string          `json:"purpose,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// BatchResponse resultado de un finalize: transacción y movimientos creados.
type BatchResponse struct {
	TransactionID string             `json:"transaction_id"`
	Type          string             `json:"type"`
	Movements     []MovementResponse `json:"movements"`
}

// MovementListResponse lista de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Total int                `json:"total"`
}
