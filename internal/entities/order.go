package entities

import "time"

// Статусы заказа
const (
	OrderDraft     = "draft"
	OrderSent      = "sent"
	OrderConfirmed = "sale"
	OrderDone      = "done"
	OrderCancelled = "cancel"
)

// Локализованные названия статусов, используются в уведомлениях и команде /orders.
var OrderStateNames = map[string]string{
	OrderDraft:     "Черновик",
	OrderSent:      "Отправлено",
	OrderConfirmed: "Подтверждено",
	OrderDone:      "Выполнено",
	OrderCancelled: "Отменено",
}

// Order - заказ (коммерческое предложение / договор). Оконные параметры
// копируются из замера при привязке.
type Order struct {
	ID            uint64  `json:"id"`
	Number        string  `json:"number"`
	PartnerID     uint64  `json:"partner_id"`
	LeadID        *uint64 `json:"lead_id"`
	MeasurementID *uint64 `json:"measurement_id"`
	IsWindowOrder bool    `json:"is_window_order"`

	WindowProfileType      *string `json:"window_profile_type"`
	WindowGlassUnitType    *string `json:"window_glass_unit_type"`
	WindowColor            *string `json:"window_color"`
	WindowWidth            float64 `json:"window_width"`
	WindowHeight           float64 `json:"window_height"`
	InstallationComplexity *string `json:"installation_complexity"`

	AmountTotal        float64    `json:"amount_total"`
	State              string     `json:"state"`
	DateOrder          time.Time  `json:"date_order"`
	ProductionID       *uint64    `json:"production_id"`
	InstallationTaskID *uint64    `json:"installation_task_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

// OrderLine - строка заказа. Площадь считается из размеров в мм.
type OrderLine struct {
	ID           uint64  `json:"id"`
	OrderID      uint64  `json:"order_id"`
	ProductID    *uint64 `json:"product_id"`
	Description  string  `json:"description"`
	Qty          float64 `json:"qty"`
	PriceUnit    float64 `json:"price_unit"`
	WindowWidth  float64 `json:"window_width"`
	WindowHeight float64 `json:"window_height"`
}

// WindowArea возвращает площадь окна строки в м².
func (l OrderLine) WindowArea() float64 {
	if l.WindowWidth <= 0 || l.WindowHeight <= 0 {
		return 0
	}
	return l.WindowWidth * l.WindowHeight / 1000000
}
