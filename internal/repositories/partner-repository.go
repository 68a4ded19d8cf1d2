package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/utils"
)

const (
	partnerTable  = "partners"
	partnerFields = "id, name, phone, email, is_company, created_at"
)

type PartnerRepositoryInterface interface {
	CreatePartner(ctx context.Context, partner entities.Partner) (uint64, error)
	FindPartner(ctx context.Context, id uint64) (*entities.Partner, error)
}

type partnerRepository struct{ storage *pgxpool.Pool }

func NewPartnerRepository(storage *pgxpool.Pool) PartnerRepositoryInterface {
	return &partnerRepository{storage: storage}
}

func (r *partnerRepository) CreatePartner(ctx context.Context, partner entities.Partner) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		"INSERT INTO "+partnerTable+" (name, phone, email, is_company) VALUES ($1, $2, $3, $4) RETURNING id",
		partner.Name, utils.PtrToNullString(partner.Phone), utils.PtrToNullString(partner.Email), partner.IsCompany,
	).Scan(&id)
	return id, err
}

func (r *partnerRepository) FindPartner(ctx context.Context, id uint64) (*entities.Partner, error) {
	var p entities.Partner
	var phone, email sql.NullString
	err := r.storage.QueryRow(ctx,
		"SELECT "+partnerFields+" FROM "+partnerTable+" WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &phone, &email, &p.IsCompany, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	p.Phone = utils.NullStringToPtr(phone)
	p.Email = utils.NullStringToPtr(email)
	return &p, nil
}
