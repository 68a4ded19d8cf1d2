package entities

import "time"

// Статусы замера
const (
	MeasureDraft      = "draft"
	MeasurePlanned    = "planned"
	MeasureInProgress = "in_progress"
	MeasureDone       = "done"
	MeasureCancelled  = "cancelled"
)

// Типы профиля
const (
	ProfilePVC3         = "pvc_3"
	ProfilePVC5         = "pvc_5"
	ProfilePVC7         = "pvc_7"
	ProfileAluminum     = "aluminum"
	ProfileWood         = "wood"
	ProfileWoodAluminum = "wood_aluminum"
)

// Типы стеклопакета
const (
	GlassSingle       = "single"
	GlassDouble       = "double"
	GlassTriple       = "triple"
	GlassEnergySaving = "energy_saving"
	GlassSoundproof   = "soundproof"
)

var ProfileTypeNames = map[string]string{
	ProfilePVC3:         "ПВХ 3-камерный",
	ProfilePVC5:         "ПВХ 5-камерный",
	ProfilePVC7:         "ПВХ 7-камерный",
	ProfileAluminum:     "Алюминий",
	ProfileWood:         "Дерево",
	ProfileWoodAluminum: "Дерево-алюминий",
}

var GlassUnitTypeNames = map[string]string{
	GlassSingle:       "Однокамерный",
	GlassDouble:       "Двухкамерный",
	GlassTriple:       "Трехкамерный",
	GlassEnergySaving: "Энергосберегающий",
	GlassSoundproof:   "Шумоизоляционный",
}

// Measurement - выезд замерщика на объект. Размеры (мм) обязательны
// для перевода в статус done.
type Measurement struct {
	ID                     uint64     `json:"id"`
	Number                 string     `json:"number"`
	LeadID                 uint64     `json:"lead_id"`
	PartnerID              *uint64    `json:"partner_id"`
	Address                string     `json:"address"`
	DatePlanned            time.Time  `json:"date_planned"`
	DateDone               *time.Time `json:"date_done"`
	MeasurerID             uint64     `json:"measurer_id"`
	RoomType               *string    `json:"room_type"`
	ProfileType            *string    `json:"profile_type"`
	GlassUnitType          *string    `json:"glass_unit_type"`
	Color                  *string    `json:"color"`
	Width                  float64    `json:"width"`
	Height                 float64    `json:"height"`
	InstallationComplexity *string    `json:"installation_complexity"`
	Comments               *string    `json:"comments"`
	TaskID                 *uint64    `json:"task_id"`
	OfferID                *uint64    `json:"offer_id"`
	State                  string     `json:"state"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              *time.Time `json:"updated_at"`
}
