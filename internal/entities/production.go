package entities

import "time"

// Статусы производственного заказа
const (
	ProductionDraft     = "draft"
	ProductionConfirmed = "confirmed"
	ProductionProgress  = "progress"
	ProductionDone      = "done"
	ProductionCancelled = "cancel"
)

var ProductionStateNames = map[string]string{
	ProductionDraft:     "Черновик",
	ProductionConfirmed: "Подтвержден",
	ProductionProgress:  "В производстве",
	ProductionDone:      "Готов",
	ProductionCancelled: "Отменен",
}

// Production - производственный заказ, связан 1:1 с заказом на окна.
type Production struct {
	ID        uint64     `json:"id"`
	Number    string     `json:"number"`
	ProductID uint64     `json:"product_id"`
	Qty       float64    `json:"qty"`
	BomID     *uint64    `json:"bom_id"`
	Origin    string     `json:"origin"`
	OrderID   *uint64    `json:"order_id"`
	State     string     `json:"state"`
	DateStart *time.Time `json:"date_start"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
