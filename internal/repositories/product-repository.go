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
	productTable  = "products"
	productFields = "id, name, profile_type, glass_unit_type, is_window_product, sale_ok, created_at"

	bomTable  = "boms"
	bomFields = "id, product_id, qty, bom_type, created_at"
)

type ProductRepositoryInterface interface {
	GetOrInsertProduct(ctx context.Context, name, profileType, glassUnitType string) (*entities.Product, error)
	GetOrInsertBom(ctx context.Context, productID uint64) (*entities.Bom, error)
	FindProduct(ctx context.Context, id uint64) (*entities.Product, error)
}

type productRepository struct{ storage *pgxpool.Pool }

func NewProductRepository(storage *pgxpool.Pool) ProductRepositoryInterface {
	return &productRepository{storage: storage}
}

// GetOrInsertProduct возвращает продукт по натуральному ключу
// (profile_type, glass_unit_type), создавая его при отсутствии.
// ON CONFLICT DO NOTHING + повторный SELECT: гонка двух подтверждений
// заказа всегда сходится к одной строке.
func (r *productRepository) GetOrInsertProduct(ctx context.Context, name, profileType, glassUnitType string) (*entities.Product, error) {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO `+productTable+` (name, profile_type, glass_unit_type, is_window_product, sale_ok)
		VALUES ($1, $2, $3, true, true)
		ON CONFLICT (profile_type, glass_unit_type) DO NOTHING`,
		name, profileType, glassUnitType)
	if err != nil {
		return nil, err
	}

	var p entities.Product
	err = r.storage.QueryRow(ctx,
		"SELECT "+productFields+" FROM "+productTable+" WHERE profile_type = $1 AND glass_unit_type = $2",
		profileType, glassUnitType,
	).Scan(&p.ID, &p.Name, &p.ProfileType, &p.GlassUnitType, &p.IsWindowProduct, &p.SaleOK, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrInsertBom то же самое для спецификации: один продукт - одна спецификация.
func (r *productRepository) GetOrInsertBom(ctx context.Context, productID uint64) (*entities.Bom, error) {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO `+bomTable+` (product_id, qty, bom_type)
		VALUES ($1, 1.0, 'normal')
		ON CONFLICT (product_id) DO NOTHING`,
		productID)
	if err != nil {
		return nil, err
	}

	var b entities.Bom
	err = r.storage.QueryRow(ctx,
		"SELECT "+bomFields+" FROM "+bomTable+" WHERE product_id = $1", productID,
	).Scan(&b.ID, &b.ProductID, &b.Qty, &b.BomType, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *productRepository) FindProduct(ctx context.Context, id uint64) (*entities.Product, error) {
	var p entities.Product
	err := r.storage.QueryRow(ctx,
		"SELECT "+productFields+" FROM "+productTable+" WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &p.ProfileType, &p.GlassUnitType, &p.IsWindowProduct, &p.SaleOK, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
