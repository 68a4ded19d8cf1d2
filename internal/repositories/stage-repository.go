package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
)

const (
	stageTable  = "crm_stages"
	stageFields = "id, code, name, sequence"
)

type StageRepositoryInterface interface {
	GetStages(ctx context.Context) ([]entities.CrmStage, error)
	FindByID(ctx context.Context, id uint64) (*entities.CrmStage, error)
	FindByCode(ctx context.Context, code string) (*entities.CrmStage, error)
}

type stageRepository struct{ storage *pgxpool.Pool }

func NewStageRepository(storage *pgxpool.Pool) StageRepositoryInterface {
	return &stageRepository{storage: storage}
}

func (r *stageRepository) GetStages(ctx context.Context) ([]entities.CrmStage, error) {
	rows, err := r.storage.Query(ctx, "SELECT "+stageFields+" FROM "+stageTable+" ORDER BY sequence")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]entities.CrmStage, 0)
	for rows.Next() {
		var s entities.CrmStage
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Sequence); err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *stageRepository) FindByID(ctx context.Context, id uint64) (*entities.CrmStage, error) {
	return r.findOne(ctx, "SELECT "+stageFields+" FROM "+stageTable+" WHERE id = $1", id)
}

func (r *stageRepository) FindByCode(ctx context.Context, code string) (*entities.CrmStage, error) {
	return r.findOne(ctx, "SELECT "+stageFields+" FROM "+stageTable+" WHERE code = $1", code)
}

func (r *stageRepository) findOne(ctx context.Context, query string, arg interface{}) (*entities.CrmStage, error) {
	var s entities.CrmStage
	err := r.storage.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Code, &s.Name, &s.Sequence)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
