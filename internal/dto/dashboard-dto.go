package dto

import "github.com/aarondl/null/v8"

// FunnelRowDTO - строка воронки продаж: количество лидов на стадии.
type FunnelRowDTO struct {
	Stage    string `json:"stage"`
	Code     string `json:"code"`
	Sequence int    `json:"sequence"`
	Count    uint64 `json:"count"`
}

// ProductionPlanRowDTO - активный производственный заказ в плане.
type ProductionPlanRowDTO struct {
	Number    string      `json:"number"`
	Product   string      `json:"product"`
	Qty       float64     `json:"qty"`
	State     string      `json:"state"`
	DateStart null.String `json:"date_start"`
}

// MeasurerKpiDTO - показатели замерщика за период.
type MeasurerKpiDTO struct {
	Measurer string       `json:"measurer"`
	Total    uint64       `json:"total"`
	Done     uint64       `json:"done"`
	AvgHours null.Float64 `json:"avg_hours"`
}
