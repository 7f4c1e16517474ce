package repository_test

import (
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

func TestQuotationRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewQuotationRepo(db)
	ctx := t.Context()

	t.Run("CreateQuotation", func(t *testing.T) {
		// Arrange
		now := time.Now()
		q := &models.Quotation{
			ID:               uuid.New(),
			QuotationNumber:  "QT-20260830-ABCDEF12",
			ServiceRequestID: uuid.New(),
			LaborCost:        5000,
			PartsCost:        3000,
			TotalAmount:      8000,
			Status:           models.QuotationStatusDraft,
			ValidFrom:        now,
			ValidUntil:       now.AddDate(0, 0, 14),
		}

		expectedSQL := regexp.QuoteMeta(`
			INSERT INTO quotations
				(id, quotation_number, service_request_id, labor_cost, parts_cost, total_amount, status, valid_from, valid_until, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			RETURNING created_at, updated_at`)

		mock.ExpectQuery(expectedSQL).
			WithArgs(q.ID, q.QuotationNumber, q.ServiceRequestID, q.LaborCost, q.PartsCost,
				q.TotalAmount, q.Status, q.ValidFrom, q.ValidUntil).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		err := repo.CreateQuotation(ctx, q)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkSentTx", func(t *testing.T) {
		quotationID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE quotations
			SET status = $2, sent_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $3`)

		t.Run("DraftBecomesSent", func(t *testing.T) {
			// Arrange
			mock.ExpectBegin()
			mock.ExpectExec(expectedSQL).
				WithArgs(quotationID, models.QuotationStatusSent, models.QuotationStatusDraft).
				WillReturnResult(sqlmock.NewResult(0, 1))

			tx, err := db.Begin()
			require.NoError(t, err)

			// Act
			applied, err := repo.MarkSentTx(ctx, tx, quotationID)

			// Assert
			require.NoError(t, err)
			assert.True(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("AlreadySent", func(t *testing.T) {
			// Arrange: sending is one-way; a non-draft row never matches
			mock.ExpectBegin()
			mock.ExpectExec(expectedSQL).
				WithArgs(quotationID, models.QuotationStatusSent, models.QuotationStatusDraft).
				WillReturnResult(sqlmock.NewResult(0, 0))

			tx, err := db.Begin()
			require.NoError(t, err)

			// Act
			applied, err := repo.MarkSentTx(ctx, tx, quotationID)

			// Assert
			require.NoError(t, err)
			assert.False(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("UpdateStatusIf", func(t *testing.T) {
		quotationID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE quotations
			SET status = $2, updated_at = NOW()
			WHERE id = $1 AND status = $3`)

		// Arrange
		mock.ExpectExec(expectedSQL).
			WithArgs(quotationID, models.QuotationStatusAccepted, models.QuotationStatusSent).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		applied, err := repo.UpdateStatusIf(ctx, quotationID, models.QuotationStatusSent, models.QuotationStatusAccepted)

		// Assert
		require.NoError(t, err)
		assert.True(t, applied)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExpireOverdue", func(t *testing.T) {
		expectedSQL := regexp.QuoteMeta(`
			UPDATE quotations
			SET status = $1, updated_at = NOW()
			WHERE status = $2 AND valid_until < NOW()`)

		// Arrange
		mock.ExpectExec(expectedSQL).
			WithArgs(models.QuotationStatusExpired, models.QuotationStatusSent).
			WillReturnResult(sqlmock.NewResult(0, 3))

		// Act
		expired, err := repo.ExpireOverdue(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(3), expired)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
