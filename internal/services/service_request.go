package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	stripeSDK "github.com/stripe/stripe-go/v81"
	"github.com/tireserve/platform/internal/api/middleware"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/metrics"
	"github.com/tireserve/platform/internal/models"
	repository "github.com/tireserve/platform/internal/repositories"
	"github.com/tireserve/platform/pkg/stripe"
)

const checkoutKindServiceRequest = "service_request"

// ServiceRequestService drives the request lifecycle:
//
//	pending → mechanic_assigned → accepted → in_progress → completed
//	                            ↘ rejected
//
// Every operation takes the acting user explicitly; guard failures return
// Unauthorized or InvalidTransition and leave the request untouched.
type ServiceRequestService struct {
	repo         repository.ServiceRequestRepository
	partRepo     repository.PartRepository
	mechanicRepo repository.MechanicRepository
	userRepo     repository.UserRepository
	tx           TxManager
	gateway      stripe.Client
	dispatcher   Dispatcher
	currency     string
	adminEmail   string
}

func NewServiceRequestService(
	repo repository.ServiceRequestRepository,
	partRepo repository.PartRepository,
	mechanicRepo repository.MechanicRepository,
	userRepo repository.UserRepository,
	tx TxManager,
	gateway stripe.Client,
	dispatcher Dispatcher,
	currency string,
	adminEmail string,
) *ServiceRequestService {
	return &ServiceRequestService{
		repo:         repo,
		partRepo:     partRepo,
		mechanicRepo: mechanicRepo,
		userRepo:     userRepo,
		tx:           tx,
		gateway:      gateway,
		dispatcher:   dispatcher,
		currency:     currency,
		adminEmail:   adminEmail,
	}
}

// ComputeTotals derives the parts cost and the total from the current part
// lines. Pure; recomputed whenever lines change.
func ComputeTotals(laborCost int64, parts []models.ServiceRequestPart) (partsCost, totalCost int64) {
	for _, part := range parts {
		partsCost += part.Subtotal
	}

	return partsCost, laborCost + partsCost
}

func (s *ServiceRequestService) Create(ctx context.Context, actor models.Actor, req *models.CreateServiceRequestRequest) (*models.ServiceRequest, error) {
	var events []models.Event

	sr := &models.ServiceRequest{
		ID:            uuid.New(),
		RequestNumber: newRequestNumber("SR"),
		UserID:        actor.ID,
		Description:   req.Description,
		Status:        models.ServiceStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		LaborCost:     req.LaborCost,
	}

	if len(req.Parts) > 0 {
		parts, err := s.snapshotParts(ctx, req.Parts)
		if err != nil {
			return nil, err
		}

		sr.Parts = parts
	}

	sr.PartsCost, sr.TotalCost = ComputeTotals(sr.LaborCost, sr.Parts)

	if req.MechanicID != nil {
		mechanic, err := s.mechanicRepo.GetMechanicByID(ctx, *req.MechanicID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, errors.NotFoundError("Mechanic not found").WithError(err)
			}

			return nil, errors.DatabaseError("Failed to look up mechanic").WithError(err)
		}

		sr.MechanicID = &mechanic.ID
		sr.Status = models.ServiceStatusMechanicAssigned

		events = append(events, models.Event{
			Kind:      models.EventMechanicAssigned,
			Recipient: mechanic.Email,
			Subject:   "New service request assigned to you",
			Payload: map[string]any{
				"request_number": sr.RequestNumber,
				"total_cost":     sr.TotalCost,
			},
		})
	}

	txErr := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		return s.repo.CreateServiceRequestTx(ctx, tx, sr)
	})
	if txErr != nil {
		return nil, errors.DatabaseError("Failed to create service request").WithError(txErr)
	}

	metrics.ServiceRequestTransitions.WithLabelValues(string(sr.Status)).Inc()
	dispatchAsync(ctx, s.dispatcher, events)

	return sr, nil
}

func (s *ServiceRequestService) Get(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return s.getRequest(ctx, id)
}

// Accept moves mechanic_assigned → accepted. Only the assigned mechanic may
// accept; on success the mechanic is marked busy and the customer is asked
// to pay.
func (s *ServiceRequestService) Accept(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ServiceRequest, error) {
	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireAssignedMechanic(sr, actor, "accept"); err != nil {
		return nil, err
	}

	if sr.Status != models.ServiceStatusMechanicAssigned {
		return nil, invalidTransition(sr.Status, models.ServiceStatusAccepted)
	}

	ok, err := s.repo.MarkAccepted(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("Failed to accept service request").WithError(err)
	}

	if !ok {
		// status changed between the read and the guarded update
		return nil, invalidTransition(sr.Status, models.ServiceStatusAccepted)
	}

	if err := s.mechanicRepo.SetAvailability(ctx, actor.ID, models.MechanicBusy); err != nil {
		middleware.LoggerFromContext(ctx).Error("Failed to mark mechanic busy", slog.String("error", err.Error()))
	}

	metrics.ServiceRequestTransitions.WithLabelValues(string(models.ServiceStatusAccepted)).Inc()

	s.notifyCustomer(ctx, sr, models.EventServiceAccepted,
		"Your service request was accepted — please make payment",
		map[string]any{"request_number": sr.RequestNumber, "total_cost": sr.TotalCost})

	return s.getRequest(ctx, id)
}

// Reject moves mechanic_assigned → rejected and clears the assignment. A
// reason is required so the customer learns why.
func (s *ServiceRequestService) Reject(ctx context.Context, actor models.Actor, id uuid.UUID, reason string) (*models.ServiceRequest, error) {
	if reason == "" || utf8.RuneCountInString(reason) > 500 {
		return nil, errors.ValidationError("A rejection reason of at most 500 characters is required")
	}

	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireAssignedMechanic(sr, actor, "reject"); err != nil {
		return nil, err
	}

	if sr.Status != models.ServiceStatusMechanicAssigned {
		return nil, invalidTransition(sr.Status, models.ServiceStatusRejected)
	}

	ok, err := s.repo.MarkRejected(ctx, id, reason)
	if err != nil {
		return nil, errors.DatabaseError("Failed to reject service request").WithError(err)
	}

	if !ok {
		return nil, invalidTransition(sr.Status, models.ServiceStatusRejected)
	}

	metrics.ServiceRequestTransitions.WithLabelValues(string(models.ServiceStatusRejected)).Inc()

	s.notifyCustomer(ctx, sr, models.EventServiceRejected,
		"Your service request was rejected",
		map[string]any{"request_number": sr.RequestNumber, "reason": reason})

	return s.getRequest(ctx, id)
}

// Pay requests a payment intent for an accepted service request.
func (s *ServiceRequestService) Pay(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.PaymentIntentResponse, error) {
	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.ID != sr.UserID {
		return nil, errors.UnauthorizedError("Only the requesting customer can pay for this service")
	}

	if sr.Status != models.ServiceStatusAccepted {
		return nil, errors.InvalidTransitionError("Service request is not awaiting payment")
	}

	if sr.PaymentStatus == models.PaymentStatusPaid {
		return nil, errors.InvalidTransitionError("Service request is already paid")
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, sr.TotalCost, s.currency, "Service "+sr.RequestNumber, map[string]string{
		metadataKind:   checkoutKindServiceRequest,
		"request_id":   sr.ID.String(),
		metadataUserID: sr.UserID.String(),
	})
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	if err := s.repo.SetPaymentIntent(ctx, sr.ID, intent.ID); err != nil {
		return nil, errors.DatabaseError("Failed to record payment intent").WithError(err)
	}

	return &models.PaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          sr.TotalCost,
		Currency:        s.currency,
	}, nil
}

// ConfirmPayment settles a succeeded intent against its service request:
// payment_status becomes paid and the request moves accepted → in_progress.
// Confirming an already paid request returns it unchanged.
func (s *ServiceRequestService) ConfirmPayment(ctx context.Context, paymentIntentID string) (*models.ServiceRequest, error) {
	sr, err := s.repo.GetByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Service request not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to look up service request").WithError(err)
	}

	if sr.PaymentStatus == models.PaymentStatusPaid {
		metrics.PaymentConfirmations.WithLabelValues(checkoutKindServiceRequest, "duplicate").Inc()

		return sr, nil
	}

	intent, err := s.gateway.RetrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to retrieve payment intent").WithError(err)
	}

	if intent.Status != stripeSDK.PaymentIntentStatusSucceeded {
		metrics.PaymentConfirmations.WithLabelValues(checkoutKindServiceRequest, "failed").Inc()

		return nil, errors.PaymentNotSucceededError()
	}

	ok, err := s.repo.MarkPaid(ctx, sr.ID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to record payment").WithError(err)
	}

	if !ok {
		// Either a concurrent confirmation won, or the request has left the
		// accepted state. Re-read to tell the two apart.
		current, err := s.getRequest(ctx, sr.ID)
		if err != nil {
			return nil, err
		}

		if current.PaymentStatus == models.PaymentStatusPaid {
			metrics.PaymentConfirmations.WithLabelValues(checkoutKindServiceRequest, "duplicate").Inc()

			return current, nil
		}

		return nil, invalidTransition(current.Status, models.ServiceStatusInProgress)
	}

	metrics.PaymentConfirmations.WithLabelValues(checkoutKindServiceRequest, "ok").Inc()
	metrics.ServiceRequestTransitions.WithLabelValues(string(models.ServiceStatusInProgress)).Inc()

	payload := map[string]any{
		"request_number": sr.RequestNumber,
		"amount":         sr.TotalCost,
	}

	events := []models.Event{}

	if s.adminEmail != "" {
		events = append(events, models.Event{
			Kind:      models.EventServicePaid,
			Recipient: s.adminEmail,
			Subject:   "Service request paid",
			Payload:   payload,
		})
	}

	if user, err := s.userRepo.GetUserByID(ctx, sr.UserID); err == nil {
		events = append(events, models.Event{
			Kind:      models.EventServicePaid,
			Recipient: user.Email,
			Subject:   "Payment received for " + sr.RequestNumber,
			Payload:   payload,
		})
	}

	dispatchAsync(ctx, s.dispatcher, events)

	return s.getRequest(ctx, sr.ID)
}

// Complete moves in_progress → completed. Requires the assigned mechanic and
// a paid request; a request can never complete unpaid.
func (s *ServiceRequestService) Complete(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ServiceRequest, error) {
	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireAssignedMechanic(sr, actor, "complete"); err != nil {
		return nil, err
	}

	if sr.PaymentStatus != models.PaymentStatusPaid {
		return nil, errors.InvalidTransitionError("Service request cannot be completed before payment")
	}

	if sr.Status != models.ServiceStatusInProgress {
		return nil, invalidTransition(sr.Status, models.ServiceStatusCompleted)
	}

	ok, err := s.repo.MarkCompleted(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("Failed to complete service request").WithError(err)
	}

	if !ok {
		return nil, invalidTransition(sr.Status, models.ServiceStatusCompleted)
	}

	if err := s.mechanicRepo.SetAvailability(ctx, actor.ID, models.MechanicAvailable); err != nil {
		middleware.LoggerFromContext(ctx).Error("Failed to mark mechanic available", slog.String("error", err.Error()))
	}

	metrics.ServiceRequestTransitions.WithLabelValues(string(models.ServiceStatusCompleted)).Inc()

	s.notifyCustomer(ctx, sr, models.EventServiceCompleted,
		"Your service is complete",
		map[string]any{"request_number": sr.RequestNumber})

	return s.getRequest(ctx, id)
}

// AttachParts adds or updates part lines on a request and recomputes its
// totals from the stored rows. The upserts and the totals write share one
// transaction, so the persisted costs always match the persisted lines.
func (s *ServiceRequestService) AttachParts(ctx context.Context, actor models.Actor, id uuid.UUID, inputs []models.ServicePartInput) (*models.ServiceRequest, error) {
	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireAssignedMechanic(sr, actor, "modify"); err != nil {
		return nil, err
	}

	parts, err := s.snapshotParts(ctx, inputs)
	if err != nil {
		return nil, err
	}

	txErr := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.AttachPartsTx(ctx, tx, id, parts); err != nil {
			return err
		}

		stored, err := s.repo.ListPartsTx(ctx, tx, id)
		if err != nil {
			return err
		}

		partsCost, totalCost := ComputeTotals(sr.LaborCost, stored)

		return s.repo.UpdateCostsTx(ctx, tx, id, sr.LaborCost, partsCost, totalCost)
	})
	if txErr != nil {
		return nil, errors.DatabaseError("Failed to attach parts").WithError(txErr)
	}

	return s.getRequest(ctx, id)
}

func (s *ServiceRequestService) getRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Service request not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load service request").WithError(err)
	}

	return sr, nil
}

func (s *ServiceRequestService) snapshotParts(ctx context.Context, inputs []models.ServicePartInput) ([]models.ServiceRequestPart, error) {
	parts := make([]models.ServiceRequestPart, 0, len(inputs))

	for _, input := range inputs {
		part, err := s.partRepo.GetPartByID(ctx, input.PartID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, errors.NotFoundError("Part not found: " + input.PartID.String()).WithError(err)
			}

			return nil, errors.DatabaseError("Failed to look up part").WithError(err)
		}

		parts = append(parts, models.ServiceRequestPart{
			ID:        uuid.New(),
			PartID:    part.ID,
			PartName:  part.Name,
			Quantity:  input.Quantity,
			UnitPrice: part.Price,
			Subtotal:  int64(input.Quantity) * part.Price,
			Status:    models.PartUsageRecommended,
		})
	}

	return parts, nil
}

func (s *ServiceRequestService) notifyCustomer(ctx context.Context, sr *models.ServiceRequest, kind models.EventKind, subject string, payload map[string]any) {
	user, err := s.userRepo.GetUserByID(ctx, sr.UserID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to resolve notification recipient", slog.String("error", err.Error()))

		return
	}

	dispatchAsync(ctx, s.dispatcher, []models.Event{{
		Kind:      kind,
		Recipient: user.Email,
		Subject:   subject,
		Payload:   payload,
	}})
}

func requireAssignedMechanic(sr *models.ServiceRequest, actor models.Actor, verb string) error {
	if sr.MechanicID == nil || actor.ID != *sr.MechanicID {
		return errors.UnauthorizedError("Only the assigned mechanic can " + verb + " this request")
	}

	return nil
}

func invalidTransition(from, to models.ServiceRequestStatus) error {
	return errors.InvalidTransitionError(fmt.Sprintf("Cannot move a %s service request to %s", from, to))
}

func newRequestNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix)
}
