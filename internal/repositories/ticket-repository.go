package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/utils"
)

const (
	ticketTable  = "service_tickets"
	ticketFields = `id, number, partner_id, order_id, installation_task_id, installation_date,
		warranty_status, type_of_issue, description, state, assigned_user_id,
		resolution, date_resolved, created_at, updated_at`
)

type dbTicket struct {
	ID                 uint64
	Number             string
	PartnerID          uint64
	OrderID            sql.NullInt64
	InstallationTaskID sql.NullInt64
	InstallationDate   sql.NullTime
	WarrantyStatus     string
	TypeOfIssue        string
	Description        string
	State              string
	AssignedUserID     sql.NullInt64
	Resolution         sql.NullString
	DateResolved       sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          sql.NullTime
}

func (db *dbTicket) toEntity() *entities.ServiceTicket {
	return &entities.ServiceTicket{
		ID:                 db.ID,
		Number:             db.Number,
		PartnerID:          db.PartnerID,
		OrderID:            utils.NullInt64ToPtr(db.OrderID),
		InstallationTaskID: utils.NullInt64ToPtr(db.InstallationTaskID),
		InstallationDate:   utils.NullTimeToPtr(db.InstallationDate),
		WarrantyStatus:     db.WarrantyStatus,
		TypeOfIssue:        db.TypeOfIssue,
		Description:        db.Description,
		State:              db.State,
		AssignedUserID:     utils.NullInt64ToPtr(db.AssignedUserID),
		Resolution:         utils.NullStringToPtr(db.Resolution),
		DateResolved:       utils.NullTimeToPtr(db.DateResolved),
		CreatedAt:          db.CreatedAt,
		UpdatedAt:          utils.NullTimeToPtr(db.UpdatedAt),
	}
}

func scanTicket(row pgx.Row) (*entities.ServiceTicket, error) {
	var db dbTicket
	err := row.Scan(&db.ID, &db.Number, &db.PartnerID, &db.OrderID, &db.InstallationTaskID,
		&db.InstallationDate, &db.WarrantyStatus, &db.TypeOfIssue, &db.Description, &db.State,
		&db.AssignedUserID, &db.Resolution, &db.DateResolved, &db.CreatedAt, &db.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity(), nil
}

type TicketRepositoryInterface interface {
	CreateTicket(ctx context.Context, t entities.ServiceTicket) (uint64, error)
	FindTicket(ctx context.Context, id uint64) (*entities.ServiceTicket, error)
	GetTickets(ctx context.Context, limit, offset uint64) ([]entities.ServiceTicket, uint64, error)
	UpdateWarranty(ctx context.Context, id uint64, installationDate *time.Time, warrantyStatus string) error
	UpdateState(ctx context.Context, id uint64, state string) error
	Assign(ctx context.Context, id, userID uint64) error
	Resolve(ctx context.Context, id uint64, resolution string, dateResolved time.Time) error
}

type ticketRepository struct{ storage *pgxpool.Pool }

func NewTicketRepository(storage *pgxpool.Pool) TicketRepositoryInterface {
	return &ticketRepository{storage: storage}
}

func (r *ticketRepository) CreateTicket(ctx context.Context, t entities.ServiceTicket) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+ticketTable+`
			(number, partner_id, order_id, installation_task_id, installation_date,
			 warranty_status, type_of_issue, description, state)
		VALUES ('SRV-' || lpad(nextval('service_ticket_seq')::text, 5, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		t.PartnerID, utils.PtrToNullInt64(t.OrderID), utils.PtrToNullInt64(t.InstallationTaskID),
		utils.PtrToNullTime(t.InstallationDate), t.WarrantyStatus, t.TypeOfIssue,
		t.Description, t.State,
	).Scan(&id)
	return id, err
}

func (r *ticketRepository) FindTicket(ctx context.Context, id uint64) (*entities.ServiceTicket, error) {
	return scanTicket(r.storage.QueryRow(ctx,
		"SELECT "+ticketFields+" FROM "+ticketTable+" WHERE id = $1", id))
}

func (r *ticketRepository) GetTickets(ctx context.Context, limit, offset uint64) ([]entities.ServiceTicket, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM "+ticketTable).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.ServiceTicket{}, 0, nil
	}

	rows, err := r.storage.Query(ctx,
		"SELECT "+ticketFields+" FROM "+ticketTable+" ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := make([]entities.ServiceTicket, 0)
	for rows.Next() {
		var db dbTicket
		if err := rows.Scan(&db.ID, &db.Number, &db.PartnerID, &db.OrderID, &db.InstallationTaskID,
			&db.InstallationDate, &db.WarrantyStatus, &db.TypeOfIssue, &db.Description, &db.State,
			&db.AssignedUserID, &db.Resolution, &db.DateResolved, &db.CreatedAt, &db.UpdatedAt); err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, *db.toEntity())
	}
	return tickets, total, rows.Err()
}

func (r *ticketRepository) UpdateWarranty(ctx context.Context, id uint64, installationDate *time.Time, warrantyStatus string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+ticketTable+" SET installation_date = $2, warranty_status = $3, updated_at = now() WHERE id = $1",
		id, utils.PtrToNullTime(installationDate), warrantyStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) UpdateState(ctx context.Context, id uint64, state string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+ticketTable+" SET state = $2, updated_at = now() WHERE id = $1", id, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) Assign(ctx context.Context, id, userID uint64) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+ticketTable+" SET assigned_user_id = $2, state = $3, updated_at = now() WHERE id = $1",
		id, userID, entities.TicketAssigned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) Resolve(ctx context.Context, id uint64, resolution string, dateResolved time.Time) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE `+ticketTable+`
		SET resolution = $2, date_resolved = $3, state = $4, updated_at = now()
		WHERE id = $1`,
		id, resolution, dateResolved, entities.TicketResolved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
