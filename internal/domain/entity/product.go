package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de material.
const (
	MaterialConsumable = "consumable" // consumo: se controla solo por cantidad
	MaterialPermanent  = "permanent"  // permanente: lleva número de patrimonio
)

// PatrimonyNotApplicable es el valor de Patrimony para materiales de consumo.
const PatrimonyNotApplicable = "N/A"

// Product representa un ítem del almacén.
// Quantity solo la modifican los movimientos del ledger; AverageCost es promedio ponderado de las entradas.
type Product struct {
	ID            string
	Name          string
	NameLowercase string // derivado de Name, usado para búsqueda por prefijo
	Code          string // código asignado por el usuario (búsqueda secundaria)
	Patrimony     string // etiqueta de patrimonio; "N/A" si es de consumo
	Type          string // consumable, permanent (fijo desde la creación)
	Quantity      int
	Unit          string // unidad de medida (und, Resma, ...)
	Category      string
	Image         string // URL devuelta por el servicio de carga
	AverageCost   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidMaterialType indica si t es un tipo de material conocido.
func IsValidMaterialType(t string) bool {
	return t == MaterialConsumable || t == MaterialPermanent
}
