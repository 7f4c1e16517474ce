package service_test

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	appErrors "github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/models"
	repoMocks "github.com/tireserve/platform/internal/repositories/mocks"
	service "github.com/tireserve/platform/internal/services"
	stripeMocks "github.com/tireserve/platform/pkg/stripe/mocks"
)

type serviceRequestFixture struct {
	repo         *repoMocks.MockServiceRequestRepository
	partRepo     *repoMocks.MockPartRepository
	mechanicRepo *repoMocks.MockMechanicRepository
	userRepo     *repoMocks.MockUserRepository
	gateway      *stripeMocks.MockClient
	dispatcher   *captureDispatcher
	service      *service.ServiceRequestService
}

func newServiceRequestFixture(t *testing.T) *serviceRequestFixture {
	f := &serviceRequestFixture{
		repo:         repoMocks.NewMockServiceRequestRepository(t),
		partRepo:     repoMocks.NewMockPartRepository(t),
		mechanicRepo: repoMocks.NewMockMechanicRepository(t),
		userRepo:     repoMocks.NewMockUserRepository(t),
		gateway:      stripeMocks.NewMockClient(t),
		dispatcher:   newCaptureDispatcher(),
	}

	f.service = service.NewServiceRequestService(
		f.repo, f.partRepo, f.mechanicRepo, f.userRepo, &stubTxManager{},
		f.gateway, f.dispatcher, "usd", "admin@tireserve.local",
	)

	return f
}

func TestComputeTotals(t *testing.T) {
	parts := []models.ServiceRequestPart{
		{Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
		{Quantity: 1, UnitPrice: 1000, Subtotal: 1000},
	}

	partsCost, totalCost := service.ComputeTotals(5000, parts)

	assert.Equal(t, int64(3000), partsCost)
	assert.Equal(t, int64(8000), totalCost)
}

func TestCreateServiceRequest(t *testing.T) {
	ctx := t.Context()
	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}

	t.Run("PendingWithoutMechanic", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		f.repo.On("CreateServiceRequestTx", ctx, (*sql.Tx)(nil), mock.MatchedBy(func(sr *models.ServiceRequest) bool {
			return sr.Status == models.ServiceStatusPending && sr.UserID == customer.ID
		})).Return(nil).Once()

		// Act
		sr, err := f.service.Create(ctx, customer, &models.CreateServiceRequestRequest{
			Description: "Flat tire on the highway",
			LaborCost:   5000,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusPending, sr.Status)
		assert.Equal(t, int64(5000), sr.TotalCost)
		assert.NotEmpty(t, sr.RequestNumber)
	})

	t.Run("AssignedMechanicGetsNotified", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)
		mechanicID := uuid.New()

		f.mechanicRepo.On("GetMechanicByID", ctx, mechanicID).
			Return(&models.Mechanic{ID: mechanicID, Email: "mechanic@example.com"}, nil).Once()
		f.repo.On("CreateServiceRequestTx", ctx, (*sql.Tx)(nil), mock.MatchedBy(func(sr *models.ServiceRequest) bool {
			return sr.Status == models.ServiceStatusMechanicAssigned && sr.MechanicID != nil && *sr.MechanicID == mechanicID
		})).Return(nil).Once()

		// Act
		sr, err := f.service.Create(ctx, customer, &models.CreateServiceRequestRequest{
			Description: "Brake inspection",
			MechanicID:  &mechanicID,
			LaborCost:   3000,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusMechanicAssigned, sr.Status)

		events := f.dispatcher.wait(t)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventMechanicAssigned, events[0].Kind)
		assert.Equal(t, "mechanic@example.com", events[0].Recipient)
	})

	t.Run("UnknownMechanic", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)
		mechanicID := uuid.New()

		f.mechanicRepo.On("GetMechanicByID", ctx, mechanicID).Return(nil, sql.ErrNoRows).Once()

		// Act
		_, err := f.service.Create(ctx, customer, &models.CreateServiceRequestRequest{
			Description: "Brake inspection",
			MechanicID:  &mechanicID,
		})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		f.repo.AssertNotCalled(t, "CreateServiceRequestTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PartLinesSnapshotPrices", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)
		partID := uuid.New()

		f.partRepo.On("GetPartByID", ctx, partID).
			Return(&models.Part{ID: partID, Name: "Brake Pad Set", Price: 1500, Status: "active"}, nil).Once()
		f.repo.On("CreateServiceRequestTx", ctx, (*sql.Tx)(nil), mock.Anything).Return(nil).Once()

		// Act
		sr, err := f.service.Create(ctx, customer, &models.CreateServiceRequestRequest{
			Description: "Brake pads worn out",
			LaborCost:   5000,
			Parts:       []models.ServicePartInput{{PartID: partID, Quantity: 2}},
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(3000), sr.PartsCost)
		assert.Equal(t, int64(8000), sr.TotalCost)
		require.Len(t, sr.Parts, 1)
		assert.Equal(t, int64(1500), sr.Parts[0].UnitPrice)
		assert.Equal(t, models.PartUsageRecommended, sr.Parts[0].Status)
	})
}

func TestAcceptServiceRequest(t *testing.T) {
	ctx := t.Context()
	requestID := uuid.New()
	mechanicID := uuid.New()
	customerID := uuid.New()
	mechanic := models.Actor{ID: mechanicID, Role: models.RoleMechanic}

	assigned := func() *models.ServiceRequest {
		return &models.ServiceRequest{
			ID:            requestID,
			RequestNumber: "SR-20260830-ABCDEF12",
			UserID:        customerID,
			MechanicID:    &mechanicID,
			Status:        models.ServiceStatusMechanicAssigned,
			PaymentStatus: models.PaymentStatusPending,
			TotalCost:     8000,
		}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		accepted := assigned()
		accepted.Status = models.ServiceStatusAccepted

		f.repo.On("GetByID", ctx, requestID).Return(assigned(), nil).Once()
		f.repo.On("MarkAccepted", ctx, requestID).Return(true, nil).Once()
		f.mechanicRepo.On("SetAvailability", ctx, mechanicID, models.MechanicBusy).Return(nil).Once()
		f.userRepo.On("GetUserByID", ctx, customerID).
			Return(&models.User{ID: customerID, Email: "customer@example.com"}, nil).Once()
		f.repo.On("GetByID", ctx, requestID).Return(accepted, nil).Once()

		// Act
		sr, err := f.service.Accept(ctx, mechanic, requestID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusAccepted, sr.Status)

		events := f.dispatcher.wait(t)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventServiceAccepted, events[0].Kind)
		assert.Contains(t, events[0].Subject, "make payment")
	})

	t.Run("WrongMechanic", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)
		other := models.Actor{ID: uuid.New(), Role: models.RoleMechanic}

		f.repo.On("GetByID", ctx, requestID).Return(assigned(), nil).Once()

		// Act
		_, err := f.service.Accept(ctx, other, requestID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeUnauthorized, appErr.Code)
		f.repo.AssertNotCalled(t, "MarkAccepted", mock.Anything, mock.Anything)
	})

	t.Run("WrongState", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		inProgress := assigned()
		inProgress.Status = models.ServiceStatusInProgress

		f.repo.On("GetByID", ctx, requestID).Return(inProgress, nil).Once()

		// Act
		_, err := f.service.Accept(ctx, mechanic, requestID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInvalidTransition, appErr.Code)
	})
}

func TestRejectServiceRequest(t *testing.T) {
	ctx := t.Context()
	requestID := uuid.New()
	mechanicID := uuid.New()
	customerID := uuid.New()
	mechanic := models.Actor{ID: mechanicID, Role: models.RoleMechanic}

	assigned := func() *models.ServiceRequest {
		return &models.ServiceRequest{
			ID:            requestID,
			RequestNumber: "SR-20260830-ABCDEF12",
			UserID:        customerID,
			MechanicID:    &mechanicID,
			Status:        models.ServiceStatusMechanicAssigned,
		}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		rejected := assigned()
		rejected.Status = models.ServiceStatusRejected
		rejected.MechanicID = nil
		rejected.RejectionReason = "no availability this week"

		f.repo.On("GetByID", ctx, requestID).Return(assigned(), nil).Once()
		f.repo.On("MarkRejected", ctx, requestID, "no availability this week").Return(true, nil).Once()
		f.userRepo.On("GetUserByID", ctx, customerID).
			Return(&models.User{ID: customerID, Email: "customer@example.com"}, nil).Once()
		f.repo.On("GetByID", ctx, requestID).Return(rejected, nil).Once()

		// Act
		sr, err := f.service.Reject(ctx, mechanic, requestID, "no availability this week")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusRejected, sr.Status)
		assert.Nil(t, sr.MechanicID, "rejection should clear the assignment")

		events := f.dispatcher.wait(t)
		require.Len(t, events, 1)
		assert.Equal(t, "no availability this week", events[0].Payload["reason"])
	})

	t.Run("MissingReason", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		// Act
		_, err := f.service.Reject(ctx, mechanic, requestID, "")

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
		f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("ReasonLimitCountsRunes", func(t *testing.T) {
		// Arrange: 400 characters, but well over 500 bytes
		f := newServiceRequestFixture(t)
		reason := strings.Repeat("ü", 400)

		rejected := assigned()
		rejected.Status = models.ServiceStatusRejected
		rejected.MechanicID = nil

		f.repo.On("GetByID", ctx, requestID).Return(assigned(), nil).Once()
		f.repo.On("MarkRejected", ctx, requestID, reason).Return(true, nil).Once()
		f.userRepo.On("GetUserByID", ctx, customerID).
			Return(&models.User{ID: customerID, Email: "customer@example.com"}, nil).Once()
		f.repo.On("GetByID", ctx, requestID).Return(rejected, nil).Once()

		// Act
		sr, err := f.service.Reject(ctx, mechanic, requestID, reason)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusRejected, sr.Status)
		f.dispatcher.wait(t)
	})

	t.Run("ReasonTooLong", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		// Act
		_, err := f.service.Reject(ctx, mechanic, requestID, strings.Repeat("ü", 501))

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
	})
}

func TestPayServiceRequest(t *testing.T) {
	ctx := t.Context()
	requestID := uuid.New()
	mechanicID := uuid.New()
	customerID := uuid.New()
	customer := models.Actor{ID: customerID, Role: models.RoleCustomer}

	accepted := func() *models.ServiceRequest {
		return &models.ServiceRequest{
			ID:            requestID,
			RequestNumber: "SR-20260830-ABCDEF12",
			UserID:        customerID,
			MechanicID:    &mechanicID,
			Status:        models.ServiceStatusAccepted,
			PaymentStatus: models.PaymentStatusPending,
			TotalCost:     8000,
		}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		f.repo.On("GetByID", ctx, requestID).Return(accepted(), nil).Once()
		f.gateway.On("CreatePaymentIntent", ctx, int64(8000), "usd", "Service SR-20260830-ABCDEF12", mock.MatchedBy(func(md map[string]string) bool {
			return md["kind"] == "service_request" && md["request_id"] == requestID.String()
		})).Return(&stripe.PaymentIntent{ID: "pi_svc", ClientSecret: "pi_svc_secret"}, nil).Once()
		f.repo.On("SetPaymentIntent", ctx, requestID, "pi_svc").Return(nil).Once()

		// Act
		resp, err := f.service.Pay(ctx, customer, requestID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "pi_svc", resp.PaymentIntentID)
		assert.Equal(t, int64(8000), resp.Amount)
	})

	t.Run("OnlyRequestingCustomer", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)
		other := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}

		f.repo.On("GetByID", ctx, requestID).Return(accepted(), nil).Once()

		// Act
		_, err := f.service.Pay(ctx, other, requestID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeUnauthorized, appErr.Code)
	})

	t.Run("NotAwaitingPayment", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		pending := accepted()
		pending.Status = models.ServiceStatusPending

		f.repo.On("GetByID", ctx, requestID).Return(pending, nil).Once()

		// Act
		_, err := f.service.Pay(ctx, customer, requestID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInvalidTransition, appErr.Code)
	})
}

func TestConfirmServicePayment(t *testing.T) {
	ctx := t.Context()
	requestID := uuid.New()
	customerID := uuid.New()
	paymentIntentID := "pi_svc"

	accepted := func() *models.ServiceRequest {
		return &models.ServiceRequest{
			ID:              requestID,
			RequestNumber:   "SR-20260830-ABCDEF12",
			UserID:          customerID,
			Status:          models.ServiceStatusAccepted,
			PaymentStatus:   models.PaymentStatusPending,
			PaymentIntentID: paymentIntentID,
			TotalCost:       8000,
		}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		paid := accepted()
		paid.Status = models.ServiceStatusInProgress
		paid.PaymentStatus = models.PaymentStatusPaid

		f.repo.On("GetByPaymentIntentID", ctx, paymentIntentID).Return(accepted(), nil).Once()
		f.gateway.On("RetrievePaymentIntent", ctx, paymentIntentID).
			Return(&stripe.PaymentIntent{ID: paymentIntentID, Status: stripe.PaymentIntentStatusSucceeded}, nil).Once()
		f.repo.On("MarkPaid", ctx, requestID).Return(true, nil).Once()
		f.userRepo.On("GetUserByID", ctx, customerID).
			Return(&models.User{ID: customerID, Email: "customer@example.com"}, nil).Once()
		f.repo.On("GetByID", ctx, requestID).Return(paid, nil).Once()

		// Act
		sr, err := f.service.ConfirmPayment(ctx, paymentIntentID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusInProgress, sr.Status)
		assert.Equal(t, models.PaymentStatusPaid, sr.PaymentStatus)

		events := f.dispatcher.wait(t)
		require.Len(t, events, 2, "admin and customer should both be notified")
		assert.Equal(t, "admin@tireserve.local", events[0].Recipient)
		assert.Equal(t, "customer@example.com", events[1].Recipient)
	})

	t.Run("AlreadyPaidIsIdempotent", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		paid := accepted()
		paid.Status = models.ServiceStatusInProgress
		paid.PaymentStatus = models.PaymentStatusPaid

		f.repo.On("GetByPaymentIntentID", ctx, paymentIntentID).Return(paid, nil).Once()

		// Act
		sr, err := f.service.ConfirmPayment(ctx, paymentIntentID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, sr.PaymentStatus)
		f.gateway.AssertNotCalled(t, "RetrievePaymentIntent", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	})

	t.Run("IntentNotSucceeded", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		f.repo.On("GetByPaymentIntentID", ctx, paymentIntentID).Return(accepted(), nil).Once()
		f.gateway.On("RetrievePaymentIntent", ctx, paymentIntentID).
			Return(&stripe.PaymentIntent{ID: paymentIntentID, Status: stripe.PaymentIntentStatusProcessing}, nil).Once()

		// Act
		_, err := f.service.ConfirmPayment(ctx, paymentIntentID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePaymentNotSucceeded, appErr.Code)
	})

	t.Run("LostRaceReturnsPaidRequest", func(t *testing.T) {
		// Arrange: the guarded update misses because a concurrent confirm won
		f := newServiceRequestFixture(t)

		paid := accepted()
		paid.Status = models.ServiceStatusInProgress
		paid.PaymentStatus = models.PaymentStatusPaid

		f.repo.On("GetByPaymentIntentID", ctx, paymentIntentID).Return(accepted(), nil).Once()
		f.gateway.On("RetrievePaymentIntent", ctx, paymentIntentID).
			Return(&stripe.PaymentIntent{ID: paymentIntentID, Status: stripe.PaymentIntentStatusSucceeded}, nil).Once()
		f.repo.On("MarkPaid", ctx, requestID).Return(false, nil).Once()
		f.repo.On("GetByID", ctx, requestID).Return(paid, nil).Once()

		// Act
		sr, err := f.service.ConfirmPayment(ctx, paymentIntentID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, sr.PaymentStatus)
	})
}

func TestCompleteServiceRequest(t *testing.T) {
	ctx := t.Context()
	requestID := uuid.New()
	mechanicID := uuid.New()
	customerID := uuid.New()
	mechanic := models.Actor{ID: mechanicID, Role: models.RoleMechanic}

	inProgress := func() *models.ServiceRequest {
		return &models.ServiceRequest{
			ID:            requestID,
			RequestNumber: "SR-20260830-ABCDEF12",
			UserID:        customerID,
			MechanicID:    &mechanicID,
			Status:        models.ServiceStatusInProgress,
			PaymentStatus: models.PaymentStatusPaid,
		}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		completed := inProgress()
		completed.Status = models.ServiceStatusCompleted

		f.repo.On("GetByID", ctx, requestID).Return(inProgress(), nil).Once()
		f.repo.On("MarkCompleted", ctx, requestID).Return(true, nil).Once()
		f.mechanicRepo.On("SetAvailability", ctx, mechanicID, models.MechanicAvailable).Return(nil).Once()
		f.userRepo.On("GetUserByID", ctx, customerID).
			Return(&models.User{ID: customerID, Email: "customer@example.com"}, nil).Once()
		f.repo.On("GetByID", ctx, requestID).Return(completed, nil).Once()

		// Act
		sr, err := f.service.Complete(ctx, mechanic, requestID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.ServiceStatusCompleted, sr.Status)
		f.dispatcher.wait(t)
	})

	t.Run("UnpaidCannotComplete", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		unpaid := inProgress()
		unpaid.PaymentStatus = models.PaymentStatusPending

		f.repo.On("GetByID", ctx, requestID).Return(unpaid, nil).Once()

		// Act
		_, err := f.service.Complete(ctx, mechanic, requestID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInvalidTransition, appErr.Code)
		f.repo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
	})

	t.Run("OnlyAssignedMechanic", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)
		other := models.Actor{ID: uuid.New(), Role: models.RoleMechanic}

		f.repo.On("GetByID", ctx, requestID).Return(inProgress(), nil).Once()

		// Act
		_, err := f.service.Complete(ctx, other, requestID)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeUnauthorized, appErr.Code)
	})
}

func TestAttachParts(t *testing.T) {
	ctx := t.Context()
	requestID := uuid.New()
	mechanicID := uuid.New()
	partID := uuid.New()
	mechanic := models.Actor{ID: mechanicID, Role: models.RoleMechanic}

	stored := []models.ServiceRequestPart{
		{PartID: partID, Quantity: 2, UnitPrice: 1500, Subtotal: 3000},
	}

	t.Run("RecomputesTotals", func(t *testing.T) {
		// Arrange
		f := newServiceRequestFixture(t)

		before := &models.ServiceRequest{
			ID: requestID, MechanicID: &mechanicID, Status: models.ServiceStatusAccepted, LaborCost: 5000,
		}
		after := &models.ServiceRequest{
			ID: requestID, MechanicID: &mechanicID, Status: models.ServiceStatusAccepted, LaborCost: 5000,
			PartsCost: 3000, TotalCost: 8000, Parts: stored,
		}

		f.repo.On("GetByID", ctx, requestID).Return(before, nil).Once()
		f.partRepo.On("GetPartByID", ctx, partID).
			Return(&models.Part{ID: partID, Name: "Brake Pad Set", Price: 1500, Status: "active"}, nil).Once()
		f.repo.On("AttachPartsTx", ctx, (*sql.Tx)(nil), requestID, mock.Anything).Return(nil).Once()
		f.repo.On("ListPartsTx", ctx, (*sql.Tx)(nil), requestID).Return(stored, nil).Once()
		f.repo.On("UpdateCostsTx", ctx, (*sql.Tx)(nil), requestID, int64(5000), int64(3000), int64(8000)).Return(nil).Once()
		f.repo.On("GetByID", ctx, requestID).Return(after, nil).Once()

		// Act
		sr, err := f.service.AttachParts(ctx, mechanic, requestID, []models.ServicePartInput{{PartID: partID, Quantity: 2}})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(3000), sr.PartsCost)
		assert.Equal(t, int64(8000), sr.TotalCost)
	})

	t.Run("CostsFailureAbortsTransaction", func(t *testing.T) {
		// Arrange: the totals write fails after the part upserts succeeded;
		// the shared transaction must surface the error so nothing commits
		f := newServiceRequestFixture(t)

		before := &models.ServiceRequest{
			ID: requestID, MechanicID: &mechanicID, Status: models.ServiceStatusAccepted, LaborCost: 5000,
		}

		f.repo.On("GetByID", ctx, requestID).Return(before, nil).Once()
		f.partRepo.On("GetPartByID", ctx, partID).
			Return(&models.Part{ID: partID, Name: "Brake Pad Set", Price: 1500, Status: "active"}, nil).Once()
		f.repo.On("AttachPartsTx", ctx, (*sql.Tx)(nil), requestID, mock.Anything).Return(nil).Once()
		f.repo.On("ListPartsTx", ctx, (*sql.Tx)(nil), requestID).Return(stored, nil).Once()
		f.repo.On("UpdateCostsTx", ctx, (*sql.Tx)(nil), requestID, int64(5000), int64(3000), int64(8000)).
			Return(errors.New("connection reset")).Once()

		// Act
		_, err := f.service.AttachParts(ctx, mechanic, requestID, []models.ServicePartInput{{PartID: partID, Quantity: 2}})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}
