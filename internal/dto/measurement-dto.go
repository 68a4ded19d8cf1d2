package dto

import "time"

// UpdateMeasurementDTO - данные, заполняемые замерщиком на объекте.
type UpdateMeasurementDTO struct {
	Address                *string    `json:"address"`
	DatePlanned            *time.Time `json:"date_planned"`
	MeasurerID             *uint64    `json:"measurer_id"`
	RoomType               *string    `json:"room_type" validate:"omitempty,oneof=living_room bedroom kitchen bathroom balcony office other"`
	ProfileType            *string    `json:"profile_type" validate:"omitempty,oneof=pvc_3 pvc_5 pvc_7 aluminum wood wood_aluminum"`
	GlassUnitType          *string    `json:"glass_unit_type" validate:"omitempty,oneof=single double triple energy_saving soundproof"`
	Color                  *string    `json:"color"`
	Width                  *float64   `json:"width" validate:"omitempty,gt=0"`
	Height                 *float64   `json:"height" validate:"omitempty,gt=0"`
	InstallationComplexity *string    `json:"installation_complexity" validate:"omitempty,oneof=simple medium complex very_complex"`
	Comments               *string    `json:"comments"`
}
