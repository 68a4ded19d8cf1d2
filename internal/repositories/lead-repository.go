package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/utils"
)

const (
	leadTable  = "crm_leads"
	leadFields = `id, name, partner_id, stage_id, object_type, area_type, budget, lead_temperature,
		desired_date_measure, address, measurement_id, contract_id, production_id,
		installation_task_id, telegram_user_id, active, created_at, updated_at`
)

type dbLead struct {
	ID                 uint64
	Name               string
	PartnerID          sql.NullInt64
	StageID            uint64
	ObjectType         sql.NullString
	AreaType           sql.NullString
	Budget             sql.NullFloat64
	LeadTemperature    string
	DesiredDateMeasure sql.NullTime
	Address            sql.NullString
	MeasurementID      sql.NullInt64
	ContractID         sql.NullInt64
	ProductionID       sql.NullInt64
	InstallationTaskID sql.NullInt64
	TelegramUserID     sql.NullInt64
	Active             bool
	CreatedAt          sql.NullTime
	UpdatedAt          sql.NullTime
}

func (db *dbLead) toEntity() *entities.Lead {
	lead := &entities.Lead{
		ID:                 db.ID,
		Name:               db.Name,
		PartnerID:          utils.NullInt64ToPtr(db.PartnerID),
		StageID:            db.StageID,
		ObjectType:         utils.NullStringToPtr(db.ObjectType),
		AreaType:           utils.NullStringToPtr(db.AreaType),
		LeadTemperature:    db.LeadTemperature,
		DesiredDateMeasure: utils.NullTimeToPtr(db.DesiredDateMeasure),
		Address:            utils.NullStringToPtr(db.Address),
		MeasurementID:      utils.NullInt64ToPtr(db.MeasurementID),
		ContractID:         utils.NullInt64ToPtr(db.ContractID),
		ProductionID:       utils.NullInt64ToPtr(db.ProductionID),
		InstallationTaskID: utils.NullInt64ToPtr(db.InstallationTaskID),
		TelegramUserID:     utils.NullInt64ToPtr(db.TelegramUserID),
		Active:             db.Active,
		UpdatedAt:          utils.NullTimeToPtr(db.UpdatedAt),
	}
	if db.Budget.Valid {
		lead.Budget = &db.Budget.Float64
	}
	if db.CreatedAt.Valid {
		lead.CreatedAt = db.CreatedAt.Time
	}
	return lead
}

func scanLead(row pgx.Row) (*entities.Lead, error) {
	var db dbLead
	err := row.Scan(&db.ID, &db.Name, &db.PartnerID, &db.StageID, &db.ObjectType, &db.AreaType,
		&db.Budget, &db.LeadTemperature, &db.DesiredDateMeasure, &db.Address, &db.MeasurementID,
		&db.ContractID, &db.ProductionID, &db.InstallationTaskID, &db.TelegramUserID,
		&db.Active, &db.CreatedAt, &db.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity(), nil
}

type LeadRepositoryInterface interface {
	CreateLead(ctx context.Context, lead entities.Lead) (uint64, error)
	FindLead(ctx context.Context, id uint64) (*entities.Lead, error)
	GetLeads(ctx context.Context, limit, offset uint64) ([]entities.Lead, uint64, error)
	FindLatestActiveByPartner(ctx context.Context, partnerID uint64) (*entities.Lead, error)
	UpdateStage(ctx context.Context, id, stageID uint64) error
	// SetLink выставляет ссылку на артефакт этапа, только если она еще не заполнена.
	SetLink(ctx context.Context, id uint64, column string, value uint64) error
	DeleteLead(ctx context.Context, id uint64) error
}

// Колонки-ссылки лида, допустимые для SetLink.
const (
	LeadLinkMeasurement  = "measurement_id"
	LeadLinkContract     = "contract_id"
	LeadLinkProduction   = "production_id"
	LeadLinkInstallation = "installation_task_id"
	LeadLinkTelegramUser = "telegram_user_id"
)

var leadLinkColumns = map[string]bool{
	LeadLinkMeasurement:  true,
	LeadLinkContract:     true,
	LeadLinkProduction:   true,
	LeadLinkInstallation: true,
	LeadLinkTelegramUser: true,
}

type leadRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLeadRepository(storage *pgxpool.Pool, logger *zap.Logger) LeadRepositoryInterface {
	return &leadRepository{storage: storage, logger: logger}
}

func (r *leadRepository) CreateLead(ctx context.Context, lead entities.Lead) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+leadTable+`
			(name, partner_id, stage_id, object_type, area_type, budget, lead_temperature, desired_date_measure, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		lead.Name, utils.PtrToNullInt64(lead.PartnerID), lead.StageID,
		utils.PtrToNullString(lead.ObjectType), utils.PtrToNullString(lead.AreaType),
		lead.Budget, lead.LeadTemperature, utils.PtrToNullTime(lead.DesiredDateMeasure),
		utils.PtrToNullString(lead.Address),
	).Scan(&id)
	return id, err
}

func (r *leadRepository) FindLead(ctx context.Context, id uint64) (*entities.Lead, error) {
	query := "SELECT " + leadFields + " FROM " + leadTable + " WHERE id = $1"
	return scanLead(r.storage.QueryRow(ctx, query, id))
}

func (r *leadRepository) GetLeads(ctx context.Context, limit, offset uint64) ([]entities.Lead, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM "+leadTable+" WHERE active = true").Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Lead{}, 0, nil
	}

	query, args, err := sq.Select(leadFields).
		From(leadTable).
		Where(sq.Eq{"active": true}).
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]entities.Lead, 0)
	for rows.Next() {
		var db dbLead
		if err := rows.Scan(&db.ID, &db.Name, &db.PartnerID, &db.StageID, &db.ObjectType, &db.AreaType,
			&db.Budget, &db.LeadTemperature, &db.DesiredDateMeasure, &db.Address, &db.MeasurementID,
			&db.ContractID, &db.ProductionID, &db.InstallationTaskID, &db.TelegramUserID,
			&db.Active, &db.CreatedAt, &db.UpdatedAt); err != nil {
			return nil, 0, err
		}
		leads = append(leads, *db.toEntity())
	}
	return leads, total, rows.Err()
}

func (r *leadRepository) FindLatestActiveByPartner(ctx context.Context, partnerID uint64) (*entities.Lead, error) {
	query := "SELECT " + leadFields + " FROM " + leadTable +
		" WHERE partner_id = $1 AND active = true ORDER BY created_at DESC LIMIT 1"
	return scanLead(r.storage.QueryRow(ctx, query, partnerID))
}

func (r *leadRepository) UpdateStage(ctx context.Context, id, stageID uint64) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+leadTable+" SET stage_id = $2, updated_at = now() WHERE id = $1", id, stageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *leadRepository) SetLink(ctx context.Context, id uint64, column string, value uint64) error {
	if !leadLinkColumns[column] {
		return fmt.Errorf("недопустимая колонка ссылки лида: %s", column)
	}
	// Ссылка выставляется один раз: существующее значение не перезаписывается.
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+leadTable+" SET "+column+" = $2, updated_at = now() WHERE id = $1 AND "+column+" IS NULL",
		id, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("Ссылка лида уже заполнена, пропускаем",
			zap.Uint64("leadID", id), zap.String("column", column))
	}
	return nil
}

func (r *leadRepository) DeleteLead(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+leadTable+" SET active = false, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
