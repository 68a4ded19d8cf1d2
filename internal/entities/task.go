package entities

import "time"

// Виды задач
const (
	TaskKindMeasurement  = "measurement"
	TaskKindInstallation = "installation"
)

// Подстатусы монтажа, переходы только вперед
const (
	InstallAssigned     = "assigned"
	InstallDelivery     = "delivery"
	InstallInstallation = "installation"
	InstallCleaning     = "cleaning"
	InstallAct          = "act"
)

var InstallationStateNames = map[string]string{
	InstallAssigned:     "Назначено",
	InstallDelivery:     "Доставка",
	InstallInstallation: "Монтаж",
	InstallCleaning:     "Уборка",
	InstallAct:          "Акт",
}

// Task - задача планирования: выезд замерщика или монтаж.
// Для монтажных задач ведется собственная цепочка подстатусов.
type Task struct {
	ID                uint64     `json:"id"`
	Name              string     `json:"name"`
	Kind              string     `json:"kind"`
	Description       *string    `json:"description"`
	AssigneeID        *uint64    `json:"assignee_id"`
	Deadline          *time.Time `json:"deadline"`
	MeasurementID     *uint64    `json:"measurement_id"`
	OrderID           *uint64    `json:"order_id"`
	InstallationState *string    `json:"installation_state"`
	DeliveryDate      *time.Time `json:"delivery_date"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
}
