package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger.
const (
	MovementTypeEntry  = "Entry"  // entrada desde proveedor
	MovementTypeExit   = "Exit"   // salida hacia un departamento
	MovementTypeReturn = "Return" // devolución desde un departamento
)

// Motivos de devolución.
const (
	ReturnReasonUnused    = "unused"
	ReturnReasonExcess    = "excess"
	ReturnReasonDefective = "defective"
	ReturnReasonOther     = "other"
)

// Movement es un registro inmutable del ledger. Quantity siempre es positiva;
// el signo lo determina Type (Entry/Return suman, Exit resta).
type Movement struct {
	ID            string
	TransactionID string // agrupa las líneas de una misma operación finalize
	ProductID     string
	Date          time.Time
	Type          string
	Quantity      int
	UnitCost      decimal.Decimal
	Responsible   string
	Supplier      string // Entry
	Invoice       string // Entry
	Department    string // Exit, Return
	Requester     string // Exit
	Purpose       string // Exit
	Reason        string // Return
	CreatedAt     time.Time
}

// SignedQuantity devuelve la cantidad con el signo aplicado al stock.
func (m *Movement) SignedQuantity() int {
	if m.Type == MovementTypeExit {
		return -m.Quantity
	}
	return m.Quantity
}

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeEntry, MovementTypeExit, MovementTypeReturn:
		return true
	}
	return false
}

// IsValidReturnReason indica si r es un motivo de devolución conocido.
func IsValidReturnReason(r string) bool {
	switch r {
	case ReturnReasonUnused, ReturnReasonExcess, ReturnReasonDefective, ReturnReasonOther:
		return true
	}
	return false
}
