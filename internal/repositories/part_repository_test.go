package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	repository "github.com/tireserve/platform/internal/repositories"
)

func TestNewPartRepo(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPartRepo(db)
	assert.NotNil(t, repo, "NewPartRepo should return a non-nil repository")
}

func TestPartRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPartRepo(db)
	ctx := t.Context()

	partColumns := []string{"id", "name", "sku", "price", "stock_quantity", "min_stock_level", "status", "created_at", "updated_at"}

	t.Run("GetPartByID", func(t *testing.T) {
		partID := uuid.New()
		now := time.Now()

		expectedSQL := regexp.QuoteMeta(`
			SELECT id, name, sku, price, stock_quantity, min_stock_level, status, created_at, updated_at
			FROM parts
			WHERE id = $1`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(expectedSQL).
				WithArgs(partID).
				WillReturnRows(sqlmock.NewRows(partColumns).
					AddRow(partID, "All-Season Tire 205/55R16", "TIR-205-55", int64(8999), 12, 5, "active", now, now))

			// Act
			part, err := repo.GetPartByID(ctx, partID)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, partID, part.ID)
			assert.Equal(t, int64(8999), part.Price)
			assert.Equal(t, 12, part.StockQuantity)
			assert.True(t, part.IsActive(), "active part should report as active")
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("NotFound", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(expectedSQL).
				WithArgs(partID).
				WillReturnError(sql.ErrNoRows)

			// Act
			part, err := repo.GetPartByID(ctx, partID)

			// Assert
			require.Error(t, err)
			assert.Nil(t, part)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("GetPartsByIDs", func(t *testing.T) {
		idA := uuid.New()
		idB := uuid.New()
		now := time.Now()

		expectedSQL := regexp.QuoteMeta(`
			SELECT id, name, sku, price, stock_quantity, min_stock_level, status, created_at, updated_at
			FROM parts
			WHERE id = ANY($1)`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(expectedSQL).
				WillReturnRows(sqlmock.NewRows(partColumns).
					AddRow(idA, "Brake Pad Set", "BRK-001", int64(4500), 8, 3, "active", now, now).
					AddRow(idB, "Oil Filter", "FLT-010", int64(1200), 30, 10, "active", now, now))

			// Act
			parts, err := repo.GetPartsByIDs(ctx, []uuid.UUID{idA, idB})

			// Assert
			require.NoError(t, err)
			require.Len(t, parts, 2)
			assert.Equal(t, "Brake Pad Set", parts[idA].Name)
			assert.Equal(t, int64(1200), parts[idB].Price)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("DecrementStock", func(t *testing.T) {
		partID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE parts
			SET stock_quantity = stock_quantity - $2, updated_at = NOW()
			WHERE id = $1 AND stock_quantity >= $2 AND status = 'active'
			RETURNING stock_quantity, min_stock_level`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectBegin()
			mock.ExpectQuery(expectedSQL).
				WithArgs(partID, 3).
				WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "min_stock_level"}).AddRow(4, 5))

			tx, err := db.Begin()
			require.NoError(t, err)

			// Act
			change, err := repo.DecrementStock(ctx, tx, partID, 3)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, 7, change.Before, "before should be reconstructed from the returned quantity")
			assert.Equal(t, 4, change.After)
			assert.Equal(t, 5, change.MinStockLevel)
			assert.True(t, change.CrossedThreshold(), "7 -> 4 crosses a threshold of 5")
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("InsufficientStock", func(t *testing.T) {
			// Arrange: no row matches the conditional update
			mock.ExpectBegin()
			mock.ExpectQuery(expectedSQL).
				WithArgs(partID, 50).
				WillReturnError(sql.ErrNoRows)

			tx, err := db.Begin()
			require.NoError(t, err)

			// Act
			change, err := repo.DecrementStock(ctx, tx, partID, 50)

			// Assert
			require.Error(t, err)
			assert.ErrorIs(t, err, repository.ErrInsufficientStock)
			assert.Nil(t, change)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("DatabaseError", func(t *testing.T) {
			// Arrange
			dbError := errors.New("connection reset")

			mock.ExpectBegin()
			mock.ExpectQuery(expectedSQL).
				WithArgs(partID, 1).
				WillReturnError(dbError)

			tx, err := db.Begin()
			require.NoError(t, err)

			// Act
			_, err = repo.DecrementStock(ctx, tx, partID, 1)

			// Assert
			require.Error(t, err)
			assert.ErrorIs(t, err, dbError)
			assert.NotErrorIs(t, err, repository.ErrInsufficientStock)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
