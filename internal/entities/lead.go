package entities

import "time"

// Температура лида
const (
	LeadHot  = "hot"
	LeadWarm = "warm"
	LeadCold = "cold"
)

// Lead - сделка, движущая всю цепочку: замер → КП → производство → монтаж.
// Ссылки на созданные этапы заполняются по одному разу и не перезаписываются.
type Lead struct {
	ID                 uint64     `json:"id"`
	Name               string     `json:"name"`
	PartnerID          *uint64    `json:"partner_id"`
	StageID            uint64     `json:"stage_id"`
	ObjectType         *string    `json:"object_type"`
	AreaType           *string    `json:"area_type"`
	Budget             *float64   `json:"budget"`
	LeadTemperature    string     `json:"lead_temperature"`
	DesiredDateMeasure *time.Time `json:"desired_date_measure"`
	Address            *string    `json:"address"`

	MeasurementID      *uint64 `json:"measurement_id"`
	ContractID         *uint64 `json:"contract_id"`
	ProductionID       *uint64 `json:"production_id"`
	InstallationTaskID *uint64 `json:"installation_task_id"`
	TelegramUserID     *uint64 `json:"telegram_user_id"`

	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
