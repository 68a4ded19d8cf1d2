package entities

import "time"

// Product - оконный продукт. Пара (profile_type, glass_unit_type) является
// натуральным ключом: в БД на нее наложен уникальный индекс, поэтому
// конкурентное создание не плодит дублей.
type Product struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	ProfileType     string    `json:"profile_type"`
	GlassUnitType   string    `json:"glass_unit_type"`
	IsWindowProduct bool      `json:"is_window_product"`
	SaleOK          bool      `json:"sale_ok"`
	CreatedAt       time.Time `json:"created_at"`
}

// Bom - спецификация (bill of materials) продукта.
type Bom struct {
	ID        uint64    `json:"id"`
	ProductID uint64    `json:"product_id"`
	Qty       float64   `json:"qty"`
	BomType   string    `json:"bom_type"`
	CreatedAt time.Time `json:"created_at"`
}
