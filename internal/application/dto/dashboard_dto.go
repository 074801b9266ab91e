package dto

import "time"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Agrega los movimientos del período filtrado (por defecto los últimos 30 días).
type DashboardSummaryDTO struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalMovements int `json:"total_movements"`
	EntryCount     int `json:"entry_count"`
	ExitCount      int `json:"exit_count"`
	ReturnCount    int `json:"return_count"`

	MostMovedItem *ItemCountDTO `json:"most_moved_item,omitempty"` // por cantidad de movimientos
	TopDepartment string        `json:"top_department,omitempty"`

	Daily       []DailyFlowDTO `json:"daily"`     // ordenado por día
	TopItems    []ItemCountDTO `json:"top_items"` // top 10 por cantidad movida
	Departments []string       `json:"departments"`
}

// DailyFlowDTO cantidades de entrada y salida de un día.
type DailyFlowDTO struct {
	Day     string `json:"day"` // YYYY-MM-DD
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
}

// ItemCountDTO resumen de un producto en el período.
type ItemCountDTO struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Movements     int    `json:"movements"`
	TotalQuantity int    `json:"total_quantity"`
}
