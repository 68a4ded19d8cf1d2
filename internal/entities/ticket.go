package entities

import "time"

// Статусы сервисного обращения
const (
	TicketNew        = "new"
	TicketAssigned   = "assigned"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

// Статусы гарантии
const (
	InWarranty    = "in_warranty"
	OutOfWarranty = "out_of_warranty"
)

// Типы проблем
const (
	IssueSeal         = "seal"
	IssueHardware     = "hardware"
	IssueGlass        = "glass"
	IssueProfile      = "profile"
	IssueInstallation = "installation"
	IssueOther        = "other"
)

// ServiceTicket - гарантийное/сервисное обращение. Статус гарантии -
// производное значение, пересчитывается при изменении даты установки
// или привязок к заказу/монтажу.
type ServiceTicket struct {
	ID                 uint64     `json:"id"`
	Number             string     `json:"number"`
	PartnerID          uint64     `json:"partner_id"`
	OrderID            *uint64    `json:"order_id"`
	InstallationTaskID *uint64    `json:"installation_task_id"`
	InstallationDate   *time.Time `json:"installation_date"`
	WarrantyStatus     string     `json:"warranty_status"`
	TypeOfIssue        string     `json:"type_of_issue"`
	Description        string     `json:"description"`
	State              string     `json:"state"`
	AssignedUserID     *uint64    `json:"assigned_user_id"`
	Resolution         *string    `json:"resolution"`
	DateResolved       *time.Time `json:"date_resolved"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}
