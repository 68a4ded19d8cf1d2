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
	orderTable  = "sale_orders"
	orderFields = `id, number, partner_id, lead_id, measurement_id, is_window_order,
		window_profile_type, window_glass_unit_type, window_color, window_width, window_height,
		installation_complexity, amount_total, state, date_order, production_id,
		installation_task_id, created_at, updated_at`

	orderLineTable  = "sale_order_lines"
	orderLineFields = "id, order_id, product_id, description, qty, price_unit, window_width, window_height"
)

type dbOrder struct {
	ID                     uint64
	Number                 string
	PartnerID              uint64
	LeadID                 sql.NullInt64
	MeasurementID          sql.NullInt64
	IsWindowOrder          bool
	WindowProfileType      sql.NullString
	WindowGlassUnitType    sql.NullString
	WindowColor            sql.NullString
	WindowWidth            sql.NullFloat64
	WindowHeight           sql.NullFloat64
	InstallationComplexity sql.NullString
	AmountTotal            float64
	State                  string
	DateOrder              time.Time
	ProductionID           sql.NullInt64
	InstallationTaskID     sql.NullInt64
	CreatedAt              time.Time
	UpdatedAt              sql.NullTime
}

func (db *dbOrder) toEntity() *entities.Order {
	return &entities.Order{
		ID:                     db.ID,
		Number:                 db.Number,
		PartnerID:              db.PartnerID,
		LeadID:                 utils.NullInt64ToPtr(db.LeadID),
		MeasurementID:          utils.NullInt64ToPtr(db.MeasurementID),
		IsWindowOrder:          db.IsWindowOrder,
		WindowProfileType:      utils.NullStringToPtr(db.WindowProfileType),
		WindowGlassUnitType:    utils.NullStringToPtr(db.WindowGlassUnitType),
		WindowColor:            utils.NullStringToPtr(db.WindowColor),
		WindowWidth:            utils.NullFloatToFloat(db.WindowWidth),
		WindowHeight:           utils.NullFloatToFloat(db.WindowHeight),
		InstallationComplexity: utils.NullStringToPtr(db.InstallationComplexity),
		AmountTotal:            db.AmountTotal,
		State:                  db.State,
		DateOrder:              db.DateOrder,
		ProductionID:           utils.NullInt64ToPtr(db.ProductionID),
		InstallationTaskID:     utils.NullInt64ToPtr(db.InstallationTaskID),
		CreatedAt:              db.CreatedAt,
		UpdatedAt:              utils.NullTimeToPtr(db.UpdatedAt),
	}
}

func (db *dbOrder) scan(row pgx.Row) error {
	return row.Scan(&db.ID, &db.Number, &db.PartnerID, &db.LeadID, &db.MeasurementID,
		&db.IsWindowOrder, &db.WindowProfileType, &db.WindowGlassUnitType, &db.WindowColor,
		&db.WindowWidth, &db.WindowHeight, &db.InstallationComplexity, &db.AmountTotal,
		&db.State, &db.DateOrder, &db.ProductionID, &db.InstallationTaskID,
		&db.CreatedAt, &db.UpdatedAt)
}

type OrderRepositoryInterface interface {
	CreateOrder(ctx context.Context, o entities.Order) (uint64, error)
	FindOrder(ctx context.Context, id uint64) (*entities.Order, error)
	GetOrders(ctx context.Context, limit, offset uint64) ([]entities.Order, uint64, error)
	UpdateState(ctx context.Context, id uint64, state string) error
	SetProduction(ctx context.Context, id, productionID uint64) error
	SetInstallationTask(ctx context.Context, id, taskID uint64) error
	ListByPartner(ctx context.Context, partnerID uint64, limit uint64) ([]entities.Order, error)
	CreateOrderLine(ctx context.Context, line entities.OrderLine) (uint64, error)
	GetOrderLines(ctx context.Context, orderID uint64) ([]entities.OrderLine, error)
	SumLineQty(ctx context.Context, orderID, productID uint64) (float64, error)
}

type orderRepository struct{ storage *pgxpool.Pool }

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &orderRepository{storage: storage}
}

func (r *orderRepository) CreateOrder(ctx context.Context, o entities.Order) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+orderTable+`
			(number, partner_id, lead_id, measurement_id, is_window_order,
			 window_profile_type, window_glass_unit_type, window_color, window_width, window_height,
			 installation_complexity, amount_total, state, date_order)
		VALUES ('SO-' || lpad(nextval('sale_order_seq')::text, 5, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		o.PartnerID, utils.PtrToNullInt64(o.LeadID), utils.PtrToNullInt64(o.MeasurementID),
		o.IsWindowOrder, utils.PtrToNullString(o.WindowProfileType),
		utils.PtrToNullString(o.WindowGlassUnitType), utils.PtrToNullString(o.WindowColor),
		o.WindowWidth, o.WindowHeight, utils.PtrToNullString(o.InstallationComplexity),
		o.AmountTotal, o.State, o.DateOrder,
	).Scan(&id)
	return id, err
}

func (r *orderRepository) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	var db dbOrder
	err := db.scan(r.storage.QueryRow(ctx,
		"SELECT "+orderFields+" FROM "+orderTable+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity(), nil
}

func (r *orderRepository) GetOrders(ctx context.Context, limit, offset uint64) ([]entities.Order, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM "+orderTable).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	rows, err := r.storage.Query(ctx,
		"SELECT "+orderFields+" FROM "+orderTable+" ORDER BY date_order DESC, id DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateState(ctx context.Context, id uint64, state string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+orderTable+" SET state = $2, updated_at = now() WHERE id = $1", id, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetProduction привязывает производственный заказ только если привязки ещё нет.
func (r *orderRepository) SetProduction(ctx context.Context, id, productionID uint64) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+orderTable+" SET production_id = $2, updated_at = now() WHERE id = $1 AND production_id IS NULL",
		id, productionID)
	return err
}

func (r *orderRepository) SetInstallationTask(ctx context.Context, id, taskID uint64) error {
	_, err := r.storage.Exec(ctx,
		"UPDATE "+orderTable+" SET installation_task_id = $2, updated_at = now() WHERE id = $1 AND installation_task_id IS NULL",
		id, taskID)
	return err
}

// ListByPartner возвращает последние заказы клиента без отменённых (для команды /orders).
func (r *orderRepository) ListByPartner(ctx context.Context, partnerID uint64, limit uint64) ([]entities.Order, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT `+orderFields+` FROM `+orderTable+`
		WHERE partner_id = $1 AND state <> $2
		ORDER BY date_order DESC, id DESC
		LIMIT $3`,
		partnerID, entities.OrderCancelled, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]entities.Order, error) {
	orders := make([]entities.Order, 0)
	for rows.Next() {
		var db dbOrder
		if err := db.scan(rows); err != nil {
			return nil, err
		}
		orders = append(orders, *db.toEntity())
	}
	return orders, rows.Err()
}

func (r *orderRepository) CreateOrderLine(ctx context.Context, line entities.OrderLine) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+orderLineTable+`
			(order_id, product_id, description, qty, price_unit, window_width, window_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		line.OrderID, utils.PtrToNullInt64(line.ProductID), line.Description,
		line.Qty, line.PriceUnit, line.WindowWidth, line.WindowHeight,
	).Scan(&id)
	return id, err
}

func (r *orderRepository) GetOrderLines(ctx context.Context, orderID uint64) ([]entities.OrderLine, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+orderLineFields+" FROM "+orderLineTable+" WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]entities.OrderLine, 0)
	for rows.Next() {
		var l entities.OrderLine
		var productID sql.NullInt64
		if err := rows.Scan(&l.ID, &l.OrderID, &productID, &l.Description, &l.Qty,
			&l.PriceUnit, &l.WindowWidth, &l.WindowHeight); err != nil {
			return nil, err
		}
		l.ProductID = utils.NullInt64ToPtr(productID)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// SumLineQty суммирует количество по строкам заказа с указанным продуктом.
func (r *orderRepository) SumLineQty(ctx context.Context, orderID, productID uint64) (float64, error) {
	var sum float64
	err := r.storage.QueryRow(ctx,
		"SELECT COALESCE(SUM(qty), 0) FROM "+orderLineTable+" WHERE order_id = $1 AND product_id = $2",
		orderID, productID).Scan(&sum)
	return sum, err
}
