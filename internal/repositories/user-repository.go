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
	userTable  = "users"
	userFields = "id, fio, email, role, active, created_at"
)

type UserRepositoryInterface interface {
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	GetUsersByRole(ctx context.Context, role string) ([]entities.User, error)
}

type userRepository struct{ storage *pgxpool.Pool }

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &userRepository{storage: storage}
}

func (r *userRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	var u entities.User
	var email sql.NullString
	err := r.storage.QueryRow(ctx,
		"SELECT "+userFields+" FROM "+userTable+" WHERE id = $1 AND active = true", id,
	).Scan(&u.ID, &u.Fio, &email, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	u.Email = utils.NullStringToPtr(email)
	return &u, nil
}

func (r *userRepository) GetUsersByRole(ctx context.Context, role string) ([]entities.User, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+userFields+" FROM "+userTable+" WHERE role = $1 AND active = true ORDER BY fio", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		var u entities.User
		var email sql.NullString
		if err := rows.Scan(&u.ID, &u.Fio, &email, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Email = utils.NullStringToPtr(email)
		users = append(users, u)
	}
	return users, rows.Err()
}
