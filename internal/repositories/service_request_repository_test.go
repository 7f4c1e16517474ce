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
	"github.com/tireserve/platform/internal/models"
	repository "github.com/tireserve/platform/internal/repositories"
)

func TestServiceRequestRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewServiceRequestRepo(db)
	ctx := t.Context()

	t.Run("CreateServiceRequestTx", func(t *testing.T) {
		txManager := &repository.Repository{DB: db}
		now := time.Now()
		mechanicID := uuid.New()

		newRequest := func() *models.ServiceRequest {
			return &models.ServiceRequest{
				ID:            uuid.New(),
				RequestNumber: "SR-20260830-ABCDEF12",
				UserID:        uuid.New(),
				MechanicID:    &mechanicID,
				Description:   "Front tire replacement",
				Status:        models.ServiceStatusMechanicAssigned,
				PaymentStatus: models.PaymentStatusPending,
				LaborCost:     5000,
				PartsCost:     3000,
				TotalCost:     8000,
				Parts: []models.ServiceRequestPart{
					{ID: uuid.New(), PartID: uuid.New(), PartName: "Brake Pad Set", Quantity: 2, UnitPrice: 1500, Subtotal: 3000, Status: models.PartUsageRecommended},
				},
			}
		}

		insertSQL := regexp.QuoteMeta(`
			INSERT INTO service_requests
				(id, request_number, user_id, mechanic_id, description, status, payment_status, labor_cost, parts_cost, total_cost, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING created_at, updated_at`)

		partSQL := regexp.QuoteMeta(`
			INSERT INTO service_request_parts
				(id, service_request_id, part_id, part_name, quantity, unit_price, subtotal, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`)

		t.Run("RequestAndPartsCommitTogether", func(t *testing.T) {
			// Arrange
			sr := newRequest()
			part := sr.Parts[0]

			mock.ExpectBegin()
			mock.ExpectQuery(insertSQL).
				WithArgs(sr.ID, sr.RequestNumber, sr.UserID, sr.MechanicID, sr.Description,
					sr.Status, sr.PaymentStatus, sr.LaborCost, sr.PartsCost, sr.TotalCost).
				WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
			mock.ExpectQuery(partSQL).
				WithArgs(part.ID, sr.ID, part.PartID, part.PartName, part.Quantity, part.UnitPrice, part.Subtotal, part.Status).
				WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
			mock.ExpectCommit()

			// Act
			err := txManager.WithinTx(ctx, func(tx *sql.Tx) error {
				return repo.CreateServiceRequestTx(ctx, tx, sr)
			})

			// Assert
			require.NoError(t, err)
			assert.WithinDuration(t, now, sr.CreatedAt, time.Second)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("FailingPartInsertRollsBackRequest", func(t *testing.T) {
			// Arrange: the request insert lands, the part insert does not
			sr := newRequest()

			mock.ExpectBegin()
			mock.ExpectQuery(insertSQL).
				WithArgs(sr.ID, sr.RequestNumber, sr.UserID, sr.MechanicID, sr.Description,
					sr.Status, sr.PaymentStatus, sr.LaborCost, sr.PartsCost, sr.TotalCost).
				WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
			mock.ExpectQuery(partSQL).
				WillReturnError(errors.New("violates foreign key constraint"))
			mock.ExpectRollback()

			// Act
			err := txManager.WithinTx(ctx, func(tx *sql.Tx) error {
				return repo.CreateServiceRequestTx(ctx, tx, sr)
			})

			// Assert: no orphan request survives the failed part insert
			require.Error(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("MarkAccepted", func(t *testing.T) {
		requestID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE service_requests
			SET status = $2, accepted_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $3`)

		t.Run("Applies", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs(requestID, models.ServiceStatusAccepted, models.ServiceStatusMechanicAssigned).
				WillReturnResult(sqlmock.NewResult(0, 1))

			// Act
			applied, err := repo.MarkAccepted(ctx, requestID)

			// Assert
			require.NoError(t, err)
			assert.True(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("WrongCurrentStatus", func(t *testing.T) {
			// Arrange: the guard matches no row, nothing changes
			mock.ExpectExec(expectedSQL).
				WithArgs(requestID, models.ServiceStatusAccepted, models.ServiceStatusMechanicAssigned).
				WillReturnResult(sqlmock.NewResult(0, 0))

			// Act
			applied, err := repo.MarkAccepted(ctx, requestID)

			// Assert
			require.NoError(t, err)
			assert.False(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("MarkRejected", func(t *testing.T) {
		requestID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE service_requests
			SET status = $2, mechanic_id = NULL, rejection_reason = $4, updated_at = NOW()
			WHERE id = $1 AND status = $3`)

		// Arrange
		mock.ExpectExec(expectedSQL).
			WithArgs(requestID, models.ServiceStatusRejected, models.ServiceStatusMechanicAssigned, "no availability this week").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		applied, err := repo.MarkRejected(ctx, requestID, "no availability this week")

		// Assert
		require.NoError(t, err)
		assert.True(t, applied)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkPaid", func(t *testing.T) {
		requestID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE service_requests
			SET status = $2, payment_status = 'paid', paid_at = NOW(), started_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $3 AND payment_status = 'pending'`)

		t.Run("Applies", func(t *testing.T) {
			mock.ExpectExec(expectedSQL).
				WithArgs(requestID, models.ServiceStatusInProgress, models.ServiceStatusAccepted).
				WillReturnResult(sqlmock.NewResult(0, 1))

			applied, err := repo.MarkPaid(ctx, requestID)

			require.NoError(t, err)
			assert.True(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("AlreadyPaid", func(t *testing.T) {
			mock.ExpectExec(expectedSQL).
				WithArgs(requestID, models.ServiceStatusInProgress, models.ServiceStatusAccepted).
				WillReturnResult(sqlmock.NewResult(0, 0))

			applied, err := repo.MarkPaid(ctx, requestID)

			require.NoError(t, err)
			assert.False(t, applied, "a second confirmation must not apply twice")
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("MarkCompleted", func(t *testing.T) {
		requestID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE service_requests
			SET status = $2, completed_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $3 AND payment_status = 'paid'`)

		t.Run("RequiresPaid", func(t *testing.T) {
			// Arrange: request is in progress but payment_status is not paid
			mock.ExpectExec(expectedSQL).
				WithArgs(requestID, models.ServiceStatusCompleted, models.ServiceStatusInProgress).
				WillReturnResult(sqlmock.NewResult(0, 0))

			// Act
			applied, err := repo.MarkCompleted(ctx, requestID)

			// Assert
			require.NoError(t, err)
			assert.False(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
