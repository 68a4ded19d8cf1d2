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
	productionTable  = "mrp_productions"
	productionFields = "id, number, product_id, qty, bom_id, origin, order_id, state, date_start, created_at, updated_at"
)

type dbProduction struct {
	ID        uint64
	Number    string
	ProductID uint64
	Qty       float64
	BomID     sql.NullInt64
	Origin    string
	OrderID   sql.NullInt64
	State     string
	DateStart sql.NullTime
	CreatedAt time.Time
	UpdatedAt sql.NullTime
}

func (db *dbProduction) toEntity() *entities.Production {
	return &entities.Production{
		ID:        db.ID,
		Number:    db.Number,
		ProductID: db.ProductID,
		Qty:       db.Qty,
		BomID:     utils.NullInt64ToPtr(db.BomID),
		Origin:    db.Origin,
		OrderID:   utils.NullInt64ToPtr(db.OrderID),
		State:     db.State,
		DateStart: utils.NullTimeToPtr(db.DateStart),
		CreatedAt: db.CreatedAt,
		UpdatedAt: utils.NullTimeToPtr(db.UpdatedAt),
	}
}

func scanProduction(row pgx.Row) (*entities.Production, error) {
	var db dbProduction
	err := row.Scan(&db.ID, &db.Number, &db.ProductID, &db.Qty, &db.BomID, &db.Origin,
		&db.OrderID, &db.State, &db.DateStart, &db.CreatedAt, &db.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity(), nil
}

type ProductionRepositoryInterface interface {
	CreateProduction(ctx context.Context, p entities.Production) (uint64, error)
	FindProduction(ctx context.Context, id uint64) (*entities.Production, error)
	GetProductions(ctx context.Context, limit, offset uint64) ([]entities.Production, uint64, error)
	UpdateState(ctx context.Context, id uint64, state string) error
}

type productionRepository struct{ storage *pgxpool.Pool }

func NewProductionRepository(storage *pgxpool.Pool) ProductionRepositoryInterface {
	return &productionRepository{storage: storage}
}

func (r *productionRepository) CreateProduction(ctx context.Context, p entities.Production) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+productionTable+` (number, product_id, qty, bom_id, origin, order_id, state, date_start)
		VALUES ('MO-' || lpad(nextval('mrp_production_seq')::text, 5, '0'), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.ProductID, p.Qty, utils.PtrToNullInt64(p.BomID), p.Origin,
		utils.PtrToNullInt64(p.OrderID), p.State, utils.PtrToNullTime(p.DateStart),
	).Scan(&id)
	return id, err
}

func (r *productionRepository) FindProduction(ctx context.Context, id uint64) (*entities.Production, error) {
	return scanProduction(r.storage.QueryRow(ctx,
		"SELECT "+productionFields+" FROM "+productionTable+" WHERE id = $1", id))
}

func (r *productionRepository) GetProductions(ctx context.Context, limit, offset uint64) ([]entities.Production, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM "+productionTable).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Production{}, 0, nil
	}

	rows, err := r.storage.Query(ctx,
		"SELECT "+productionFields+" FROM "+productionTable+" ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	productions := make([]entities.Production, 0)
	for rows.Next() {
		var db dbProduction
		if err := rows.Scan(&db.ID, &db.Number, &db.ProductID, &db.Qty, &db.BomID, &db.Origin,
			&db.OrderID, &db.State, &db.DateStart, &db.CreatedAt, &db.UpdatedAt); err != nil {
			return nil, 0, err
		}
		productions = append(productions, *db.toEntity())
	}
	return productions, total, rows.Err()
}

func (r *productionRepository) UpdateState(ctx context.Context, id uint64, state string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+productionTable+" SET state = $2, updated_at = now() WHERE id = $1", id, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
