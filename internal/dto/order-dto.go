package dto

type CreateOrderLineDTO struct {
	ProductID    *uint64 `json:"product_id"`
	Description  string  `json:"description" validate:"required"`
	Qty          float64 `json:"qty" validate:"gt=0"`
	PriceUnit    float64 `json:"price_unit" validate:"gte=0"`
	WindowWidth  float64 `json:"window_width" validate:"gte=0"`
	WindowHeight float64 `json:"window_height" validate:"gte=0"`
}

type CreateTicketDTO struct {
	PartnerID          uint64  `json:"partner_id" validate:"required"`
	OrderID            *uint64 `json:"order_id"`
	InstallationTaskID *uint64 `json:"installation_task_id"`
	InstallationDate   *string `json:"installation_date"`
	TypeOfIssue        string  `json:"type_of_issue" validate:"required,oneof=seal hardware glass profile installation other"`
	Description        string  `json:"description" validate:"required"`
}

type ResolveTicketDTO struct {
	Resolution string `json:"resolution"`
}
