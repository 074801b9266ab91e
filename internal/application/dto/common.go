package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DateRangeQuery filtros de fecha comunes (YYYY-MM-DD o RFC 3339).
type DateRangeQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}

// MovementQuery filtros de GET /api/inventory/movements y del dashboard.
type MovementQuery struct {
	DateRangeQuery
	Type         string `query:"type" validate:"omitempty,oneof=Entry Exit Return"`
	Department   string `query:"department"`
	MaterialType string `query:"material_type" validate:"omitempty,oneof=consumable permanent"`
	Limit        int    `query:"limit" validate:"min=0,max=1000"`
	Offset       int    `query:"offset" validate:"min=0"`
}
