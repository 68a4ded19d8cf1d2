package entities

// Коды стадий воронки. Порядок задается полем sequence в справочнике crm_stages.
const (
	StageNew             = "new"
	StageMeasureAssigned = "measure_assigned"
	StageMeasureDone     = "measure_done"
	StageOfferSent       = "offer_sent"
	StageContract        = "contract"
	StageProduction      = "production"
	StageReadyDelivery   = "ready_for_delivery"
	StageCompleted       = "completed"
)

type CrmStage struct {
	ID       uint64 `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Sequence int    `json:"sequence"`
}
