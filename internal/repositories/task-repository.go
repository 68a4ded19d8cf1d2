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
	taskTable  = "project_tasks"
	taskFields = `id, name, kind, description, assignee_id, deadline, measurement_id, order_id,
		installation_state, delivery_date, active, created_at, updated_at`
)

type dbTask struct {
	ID                uint64
	Name              string
	Kind              string
	Description       sql.NullString
	AssigneeID        sql.NullInt64
	Deadline          sql.NullTime
	MeasurementID     sql.NullInt64
	OrderID           sql.NullInt64
	InstallationState sql.NullString
	DeliveryDate      sql.NullTime
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         sql.NullTime
}

func (db *dbTask) toEntity() *entities.Task {
	return &entities.Task{
		ID:                db.ID,
		Name:              db.Name,
		Kind:              db.Kind,
		Description:       utils.NullStringToPtr(db.Description),
		AssigneeID:        utils.NullInt64ToPtr(db.AssigneeID),
		Deadline:          utils.NullTimeToPtr(db.Deadline),
		MeasurementID:     utils.NullInt64ToPtr(db.MeasurementID),
		OrderID:           utils.NullInt64ToPtr(db.OrderID),
		InstallationState: utils.NullStringToPtr(db.InstallationState),
		DeliveryDate:      utils.NullTimeToPtr(db.DeliveryDate),
		Active:            db.Active,
		CreatedAt:         db.CreatedAt,
		UpdatedAt:         utils.NullTimeToPtr(db.UpdatedAt),
	}
}

func scanTask(row pgx.Row) (*entities.Task, error) {
	var db dbTask
	err := row.Scan(&db.ID, &db.Name, &db.Kind, &db.Description, &db.AssigneeID, &db.Deadline,
		&db.MeasurementID, &db.OrderID, &db.InstallationState, &db.DeliveryDate,
		&db.Active, &db.CreatedAt, &db.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity(), nil
}

type TaskRepositoryInterface interface {
	CreateTask(ctx context.Context, t entities.Task) (uint64, error)
	FindTask(ctx context.Context, id uint64) (*entities.Task, error)
	GetTasks(ctx context.Context, kind string, limit, offset uint64) ([]entities.Task, uint64, error)
	UpdateInstallationState(ctx context.Context, id uint64, state string) error
	SetDeliveryDate(ctx context.Context, id uint64, date time.Time) error
}

type taskRepository struct{ storage *pgxpool.Pool }

func NewTaskRepository(storage *pgxpool.Pool) TaskRepositoryInterface {
	return &taskRepository{storage: storage}
}

func (r *taskRepository) CreateTask(ctx context.Context, t entities.Task) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+taskTable+`
			(name, kind, description, assignee_id, deadline, measurement_id, order_id, installation_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		t.Name, t.Kind, utils.PtrToNullString(t.Description), utils.PtrToNullInt64(t.AssigneeID),
		utils.PtrToNullTime(t.Deadline), utils.PtrToNullInt64(t.MeasurementID),
		utils.PtrToNullInt64(t.OrderID), utils.PtrToNullString(t.InstallationState),
	).Scan(&id)
	return id, err
}

func (r *taskRepository) FindTask(ctx context.Context, id uint64) (*entities.Task, error) {
	return scanTask(r.storage.QueryRow(ctx,
		"SELECT "+taskFields+" FROM "+taskTable+" WHERE id = $1 AND active = true", id))
}

func (r *taskRepository) GetTasks(ctx context.Context, kind string, limit, offset uint64) ([]entities.Task, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+taskTable+" WHERE kind = $1 AND active = true", kind).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Task{}, 0, nil
	}

	rows, err := r.storage.Query(ctx, `
		SELECT `+taskFields+` FROM `+taskTable+`
		WHERE kind = $1 AND active = true
		ORDER BY deadline ASC NULLS LAST, id DESC
		LIMIT $2 OFFSET $3`,
		kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]entities.Task, 0)
	for rows.Next() {
		var db dbTask
		if err := rows.Scan(&db.ID, &db.Name, &db.Kind, &db.Description, &db.AssigneeID, &db.Deadline,
			&db.MeasurementID, &db.OrderID, &db.InstallationState, &db.DeliveryDate,
			&db.Active, &db.CreatedAt, &db.UpdatedAt); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *db.toEntity())
	}
	return tasks, total, rows.Err()
}

func (r *taskRepository) UpdateInstallationState(ctx context.Context, id uint64, state string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+taskTable+" SET installation_state = $2, updated_at = now() WHERE id = $1", id, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *taskRepository) SetDeliveryDate(ctx context.Context, id uint64, date time.Time) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+taskTable+" SET delivery_date = $2, updated_at = now() WHERE id = $1", id, date)
	return err
}
