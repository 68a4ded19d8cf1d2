package dto

import "time"

type CreateLeadDTO struct {
	Name               string     `json:"name" validate:"required"`
	PartnerID          *uint64    `json:"partner_id"`
	ObjectType         *string    `json:"object_type" validate:"omitempty,oneof=apartment house office commercial other"`
	AreaType           *string    `json:"area_type" validate:"omitempty,oneof=new_building secondary renovation replacement"`
	Budget             *float64   `json:"budget"`
	LeadTemperature    string     `json:"lead_temperature" validate:"omitempty,oneof=hot warm cold"`
	DesiredDateMeasure *time.Time `json:"desired_date_measure"`
	Address            *string    `json:"address"`
}

type UpdateLeadStageDTO struct {
	StageCode string `json:"stage_code" validate:"required"`
}
