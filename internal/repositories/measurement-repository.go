package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/utils"
)

const (
	measureTable  = "window_measures"
	measureFields = `id, number, lead_id, partner_id, address, date_planned, date_done, measurer_id,
		room_type, profile_type, glass_unit_type, color, width, height,
		installation_complexity, comments, task_id, offer_id, state, created_at, updated_at`
)

type dbMeasurement struct {
	ID                     uint64
	Number                 string
	LeadID                 uint64
	PartnerID              sql.NullInt64
	Address                string
	DatePlanned            time.Time
	DateDone               sql.NullTime
	MeasurerID             uint64
	RoomType               sql.NullString
	ProfileType            sql.NullString
	GlassUnitType          sql.NullString
	Color                  sql.NullString
	Width                  sql.NullFloat64
	Height                 sql.NullFloat64
	InstallationComplexity sql.NullString
	Comments               sql.NullString
	TaskID                 sql.NullInt64
	OfferID                sql.NullInt64
	State                  string
	CreatedAt              time.Time
	UpdatedAt              sql.NullTime
}

func (db *dbMeasurement) toEntity() *entities.Measurement {
	return &entities.Measurement{
		ID:                     db.ID,
		Number:                 db.Number,
		LeadID:                 db.LeadID,
		PartnerID:              utils.NullInt64ToPtr(db.PartnerID),
		Address:                db.Address,
		DatePlanned:            db.DatePlanned,
		DateDone:               utils.NullTimeToPtr(db.DateDone),
		MeasurerID:             db.MeasurerID,
		RoomType:               utils.NullStringToPtr(db.RoomType),
		ProfileType:            utils.NullStringToPtr(db.ProfileType),
		GlassUnitType:          utils.NullStringToPtr(db.GlassUnitType),
		Color:                  utils.NullStringToPtr(db.Color),
		Width:                  utils.NullFloatToFloat(db.Width),
		Height:                 utils.NullFloatToFloat(db.Height),
		InstallationComplexity: utils.NullStringToPtr(db.InstallationComplexity),
		Comments:               utils.NullStringToPtr(db.Comments),
		TaskID:                 utils.NullInt64ToPtr(db.TaskID),
		OfferID:                utils.NullInt64ToPtr(db.OfferID),
		State:                  db.State,
		CreatedAt:              db.CreatedAt,
		UpdatedAt:              utils.NullTimeToPtr(db.UpdatedAt),
	}
}

func scanMeasurement(row pgx.Row) (*entities.Measurement, error) {
	var db dbMeasurement
	err := row.Scan(&db.ID, &db.Number, &db.LeadID, &db.PartnerID, &db.Address, &db.DatePlanned,
		&db.DateDone, &db.MeasurerID, &db.RoomType, &db.ProfileType, &db.GlassUnitType, &db.Color,
		&db.Width, &db.Height, &db.InstallationComplexity, &db.Comments, &db.TaskID, &db.OfferID,
		&db.State, &db.CreatedAt, &db.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity(), nil
}

type MeasurementRepositoryInterface interface {
	CreateMeasurement(ctx context.Context, m entities.Measurement) (uint64, error)
	FindMeasurement(ctx context.Context, id uint64) (*entities.Measurement, error)
	GetMeasurements(ctx context.Context, limit, offset uint64) ([]entities.Measurement, uint64, error)
	UpdateMeasurement(ctx context.Context, id uint64, d dto.UpdateMeasurementDTO) error
	UpdateState(ctx context.Context, id uint64, state string, dateDone *time.Time) error
	SetTask(ctx context.Context, id, taskID uint64) error
	SetOffer(ctx context.Context, id, offerID uint64) error
}

type measurementRepository struct{ storage *pgxpool.Pool }

func NewMeasurementRepository(storage *pgxpool.Pool) MeasurementRepositoryInterface {
	return &measurementRepository{storage: storage}
}

func (r *measurementRepository) CreateMeasurement(ctx context.Context, m entities.Measurement) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+measureTable+`
			(number, lead_id, partner_id, address, date_planned, measurer_id, state)
		VALUES ('ZAM-' || lpad(nextval('window_measure_seq')::text, 5, '0'), $1, $2, $3, $4, $5, $6)
		RETURNING id`,
		m.LeadID, utils.PtrToNullInt64(m.PartnerID), m.Address, m.DatePlanned, m.MeasurerID, m.State,
	).Scan(&id)
	return id, err
}

func (r *measurementRepository) FindMeasurement(ctx context.Context, id uint64) (*entities.Measurement, error) {
	query := "SELECT " + measureFields + " FROM " + measureTable + " WHERE id = $1"
	return scanMeasurement(r.storage.QueryRow(ctx, query, id))
}

func (r *measurementRepository) GetMeasurements(ctx context.Context, limit, offset uint64) ([]entities.Measurement, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM "+measureTable).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Measurement{}, 0, nil
	}

	rows, err := r.storage.Query(ctx,
		"SELECT "+measureFields+" FROM "+measureTable+" ORDER BY date_planned DESC, id DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	measures := make([]entities.Measurement, 0)
	for rows.Next() {
		var db dbMeasurement
		if err := rows.Scan(&db.ID, &db.Number, &db.LeadID, &db.PartnerID, &db.Address, &db.DatePlanned,
			&db.DateDone, &db.MeasurerID, &db.RoomType, &db.ProfileType, &db.GlassUnitType, &db.Color,
			&db.Width, &db.Height, &db.InstallationComplexity, &db.Comments, &db.TaskID, &db.OfferID,
			&db.State, &db.CreatedAt, &db.UpdatedAt); err != nil {
			return nil, 0, err
		}
		measures = append(measures, *db.toEntity())
	}
	return measures, total, rows.Err()
}

func (r *measurementRepository) UpdateMeasurement(ctx context.Context, id uint64, d dto.UpdateMeasurementDTO) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE `+measureTable+` SET
			address = COALESCE($2, address),
			date_planned = COALESCE($3, date_planned),
			measurer_id = COALESCE($4, measurer_id),
			room_type = COALESCE($5, room_type),
			profile_type = COALESCE($6, profile_type),
			glass_unit_type = COALESCE($7, glass_unit_type),
			color = COALESCE($8, color),
			width = COALESCE($9, width),
			height = COALESCE($10, height),
			installation_complexity = COALESCE($11, installation_complexity),
			comments = COALESCE($12, comments),
			updated_at = now()
		WHERE id = $1`,
		id, d.Address, d.DatePlanned, d.MeasurerID, d.RoomType, d.ProfileType, d.GlassUnitType,
		d.Color, d.Width, d.Height, d.InstallationComplexity, d.Comments)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *measurementRepository) UpdateState(ctx context.Context, id uint64, state string, dateDone *time.Time) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+measureTable+" SET state = $2, date_done = COALESCE($3, date_done), updated_at = now() WHERE id = $1",
		id, state, utils.PtrToNullTime(dateDone))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *measurementRepository) SetTask(ctx context.Context, id, taskID uint64) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+measureTable+" SET task_id = $2, updated_at = now() WHERE id = $1", id, taskID)
	return err
}

func (r *measurementRepository) SetOffer(ctx context.Context, id, offerID uint64) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+measureTable+" SET offer_id = $2, updated_at = now() WHERE id = $1 AND offer_id IS NULL",
		id, offerID)
	return err
}
