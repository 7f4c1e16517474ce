package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/models"
	"github.com/tireserve/platform/internal/utils"
)

// UserRepository is a read-only lookup; user lifecycle is owned elsewhere.
type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user := &models.User{}

	query := `SELECT id, name, email FROM users WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return user, nil
}

type MechanicRepository interface {
	GetMechanicByID(ctx context.Context, id uuid.UUID) (*models.Mechanic, error)
	SetAvailability(ctx context.Context, id uuid.UUID, availability string) error
}

type mechanicRepository struct {
	DB *sql.DB
}

func NewMechanicRepo(db *sql.DB) MechanicRepository {
	return &mechanicRepository{DB: db}
}

func (r *mechanicRepository) GetMechanicByID(ctx context.Context, id uuid.UUID) (*models.Mechanic, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	mechanic := &models.Mechanic{}

	query := `SELECT id, name, email, availability, updated_at FROM mechanics WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&mechanic.ID, &mechanic.Name, &mechanic.Email, &mechanic.Availability, &mechanic.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return mechanic, nil
}

func (r *mechanicRepository) SetAvailability(ctx context.Context, id uuid.UUID, availability string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE mechanics SET availability = $2, updated_at = NOW() WHERE id = $1
	`, id, availability)
	if err != nil {
		return fmt.Errorf("failed to update mechanic availability: %w", err)
	}

	return requireRowAffected(result)
}
