package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
)

type DashboardRepositoryInterface interface {
	GetFunnel(ctx context.Context) ([]dto.FunnelRowDTO, error)
	GetProductionPlan(ctx context.Context) ([]dto.ProductionPlanRowDTO, error)
	GetMeasurerKpi(ctx context.Context, from, to time.Time) ([]dto.MeasurerKpiDTO, error)
}

type dashboardRepository struct{ storage *pgxpool.Pool }

func NewDashboardRepository(storage *pgxpool.Pool) DashboardRepositoryInterface {
	return &dashboardRepository{storage: storage}
}

// GetFunnel считает активные лиды по стадиям. Стадии без лидов тоже
// попадают в воронку с нулем.
func (r *dashboardRepository) GetFunnel(ctx context.Context) ([]dto.FunnelRowDTO, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT s.name, s.code, s.sequence, COUNT(l.id)
		FROM crm_stages s
		LEFT JOIN crm_leads l ON l.stage_id = s.id AND l.active = true
		GROUP BY s.id, s.name, s.code, s.sequence
		ORDER BY s.sequence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funnel := make([]dto.FunnelRowDTO, 0)
	for rows.Next() {
		var row dto.FunnelRowDTO
		if err := rows.Scan(&row.Stage, &row.Code, &row.Sequence, &row.Count); err != nil {
			return nil, err
		}
		funnel = append(funnel, row)
	}
	return funnel, rows.Err()
}

func (r *dashboardRepository) GetProductionPlan(ctx context.Context) ([]dto.ProductionPlanRowDTO, error) {
	query, args, err := sq.Select("mp.number", "p.name", "mp.qty", "mp.state",
		"to_char(mp.date_start, 'YYYY-MM-DD')").
		From(productionTable + " mp").
		Join(productTable + " p ON p.id = mp.product_id").
		Where(sq.NotEq{"mp.state": []string{entities.ProductionDone, entities.ProductionCancelled}}).
		OrderBy("mp.date_start ASC NULLS LAST", "mp.id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plan := make([]dto.ProductionPlanRowDTO, 0)
	for rows.Next() {
		var row dto.ProductionPlanRowDTO
		if err := rows.Scan(&row.Number, &row.Product, &row.Qty, &row.State, &row.DateStart); err != nil {
			return nil, err
		}
		plan = append(plan, row)
	}
	return plan, rows.Err()
}

// GetMeasurerKpi - сводка по замерщикам за период: всего выездов,
// завершено, средняя длительность от плана до факта в часах.
func (r *dashboardRepository) GetMeasurerKpi(ctx context.Context, from, to time.Time) ([]dto.MeasurerKpiDTO, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT u.fio,
			COUNT(m.id),
			COUNT(m.id) FILTER (WHERE m.state = $3),
			AVG(EXTRACT(EPOCH FROM (m.date_done - m.date_planned)) / 3600)
				FILTER (WHERE m.state = $3 AND m.date_done IS NOT NULL)
		FROM `+measureTable+` m
		JOIN `+userTable+` u ON u.id = m.measurer_id
		WHERE m.date_planned >= $1 AND m.date_planned < $2
		GROUP BY u.id, u.fio
		ORDER BY u.fio`,
		from, to, entities.MeasureDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kpi := make([]dto.MeasurerKpiDTO, 0)
	for rows.Next() {
		var row dto.MeasurerKpiDTO
		var avg null.Float64
		if err := rows.Scan(&row.Measurer, &row.Total, &row.Done, &avg); err != nil {
			return nil, err
		}
		row.AvgHours = avg
		kpi = append(kpi, row)
	}
	return kpi, rows.Err()
}
