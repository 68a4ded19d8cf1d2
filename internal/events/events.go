package events

// Имена событий цепочки лида.
const (
	MeasurementScheduledName  = "measurement.scheduled"
	MeasurementCompletedName  = "measurement.completed"
	ProductionCompletedName   = "production.completed"
	InstallationActSignedName = "installation.act_signed"
	LeadStageChangedName      = "lead.stage_changed"
	OrderStatusChangedName    = "order.status_changed"
)

// MeasurementScheduled - по лиду создан замер.
type MeasurementScheduled struct {
	MeasurementID uint64
	LeadID        uint64
}

func (MeasurementScheduled) Name() string { return MeasurementScheduledName }

// MeasurementCompleted - замер переведен в done.
type MeasurementCompleted struct {
	MeasurementID uint64
	LeadID        uint64
}

func (MeasurementCompleted) Name() string { return MeasurementCompletedName }

// ProductionCompleted - производственный заказ готов.
type ProductionCompleted struct {
	ProductionID uint64
	OrderID      *uint64
}

func (ProductionCompleted) Name() string { return ProductionCompletedName }

// InstallationActSigned - подписан акт приемки монтажа.
type InstallationActSigned struct {
	TaskID  uint64
	OrderID uint64
}

func (InstallationActSigned) Name() string { return InstallationActSignedName }

// LeadStageChanged - лид перемещен на новую стадию. Публикуется
// единственным местом, меняющим стадию.
type LeadStageChanged struct {
	LeadID    uint64
	StageCode string
	StageName string
}

func (LeadStageChanged) Name() string { return LeadStageChangedName }

// OrderStatusChanged - изменился статус заказа (для уведомлений клиенту).
type OrderStatusChanged struct {
	OrderID   uint64
	PartnerID uint64
	Number    string
	State     string
}

func (OrderStatusChanged) Name() string { return OrderStatusChangedName }
