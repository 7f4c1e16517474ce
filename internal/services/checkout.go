package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	stripeSDK "github.com/stripe/stripe-go/v81"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/metrics"
	"github.com/tireserve/platform/internal/models"
	repository "github.com/tireserve/platform/internal/repositories"
	"github.com/tireserve/platform/pkg/stripe"
)

// Intent metadata keys; the confirmation step reads the checkout shape back
// from the gateway instead of re-deriving client state.
const (
	metadataKind     = "kind"
	metadataUserID   = "user_id"
	metadataPartID   = "part_id"
	metadataQuantity = "quantity"

	checkoutKindCart   = "cart"
	checkoutKindBuyNow = "buy_now"

	// metric label for confirmations short-circuited before the intent,
	// and with it the checkout kind, has been retrieved
	kindNotRetrieved = "unknown"
)

type CheckoutService struct {
	tx         TxManager
	cartRepo   repository.CartRepository
	partRepo   repository.PartRepository
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	inventory  *InventoryService
	gateway    stripe.Client
	dispatcher Dispatcher
	currency   string
}

func NewCheckoutService(
	tx TxManager,
	cartRepo repository.CartRepository,
	partRepo repository.PartRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	inventory *InventoryService,
	gateway stripe.Client,
	dispatcher Dispatcher,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		tx:         tx,
		cartRepo:   cartRepo,
		partRepo:   partRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		inventory:  inventory,
		gateway:    gateway,
		dispatcher: dispatcher,
		currency:   currency,
	}
}

// CheckoutCart prices the user's cart and requests a payment intent for it.
// Nothing is reserved; stock is settled at confirmation time.
func (s *CheckoutService) CheckoutCart(ctx context.Context, userID uuid.UUID) (*models.PaymentIntentResponse, error) {
	items, err := s.cartRepo.ListItemsByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	if len(items) == 0 {
		return nil, errors.EmptyCartError()
	}

	partIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		partIDs = append(partIDs, item.PartID)
	}

	parts, err := s.partRepo.GetPartsByIDs(ctx, partIDs)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load parts").WithError(err)
	}

	var total int64

	for _, item := range items {
		part, ok := parts[item.PartID]
		if !ok || !part.IsActive() {
			return nil, errors.NotFoundError("Part is no longer available: " + item.PartID.String())
		}

		total += int64(item.Quantity) * part.Price
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, total, s.currency, "Parts order checkout", map[string]string{
		metadataKind:   checkoutKindCart,
		metadataUserID: userID.String(),
	})
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	return &models.PaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          total,
		Currency:        s.currency,
	}, nil
}

// BuyNow requests a payment intent for a single part, embedding the part and
// quantity in the intent metadata.
func (s *CheckoutService) BuyNow(ctx context.Context, userID, partID uuid.UUID, quantity int) (*models.PaymentIntentResponse, error) {
	part, err := s.partRepo.GetPartByID(ctx, partID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Part not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load part").WithError(err)
	}

	if !part.IsActive() || part.StockQuantity == 0 {
		return nil, errors.OutOfStockError()
	}

	if quantity > part.StockQuantity {
		return nil, errors.QuantityExceedsStockError()
	}

	total := int64(quantity) * part.Price

	intent, err := s.gateway.CreatePaymentIntent(ctx, total, s.currency, "Buy now: "+part.Name, map[string]string{
		metadataKind:     checkoutKindBuyNow,
		metadataUserID:   userID.String(),
		metadataPartID:   partID.String(),
		metadataQuantity: strconv.Itoa(quantity),
	})
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	return &models.PaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          total,
		Currency:        s.currency,
	}, nil
}

// ConfirmPayment books the order for a succeeded payment intent. Order
// creation, every stock decrement and the cart clear commit together or not
// at all. A repeat call for an already fulfilled intent returns the existing
// order; the unique payment_intent_id column is the idempotency key.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	existing, err := s.orderRepo.GetOrderByPaymentIntentID(ctx, paymentIntentID)
	if err == nil {
		metrics.PaymentConfirmations.WithLabelValues(kindNotRetrieved, "duplicate").Inc()

		return existing, nil
	}

	if err != sql.ErrNoRows {
		return nil, errors.DatabaseError("Failed to look up order").WithError(err)
	}

	intent, err := s.gateway.RetrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		// No state has been touched; the caller may retry a gateway timeout.
		return nil, errors.ThirdPartyError("Failed to retrieve payment intent").WithError(err)
	}

	if intent.Status != stripeSDK.PaymentIntentStatusSucceeded {
		return nil, errors.PaymentNotSucceededError()
	}

	kind := intent.Metadata[metadataKind]

	userID, err := uuid.Parse(intent.Metadata[metadataUserID])
	if err != nil {
		return nil, errors.InternalError("Payment intent is missing checkout metadata").WithError(err)
	}

	var (
		order  *models.Order
		events []models.Event
	)

	txErr := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		lines, err := s.resolveLines(ctx, tx, kind, userID, intent)
		if err != nil {
			return err
		}

		partIDs := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			partIDs = append(partIDs, line.partID)
		}

		parts, err := s.partRepo.GetPartsByIDs(ctx, partIDs)
		if err != nil {
			return errors.DatabaseError("Failed to load parts").WithError(err)
		}

		order = &models.Order{
			ID:              uuid.New(),
			UserID:          userID,
			PaymentIntentID: paymentIntentID,
			Status:          models.OrderStatusCompleted,
		}

		var total int64

		for _, line := range lines {
			part, ok := parts[line.partID]
			if !ok {
				return errors.NotFoundError("Part not found: " + line.partID.String())
			}

			item := models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				PartID:    part.ID,
				PartName:  part.Name,
				SKU:       part.SKU,
				Quantity:  line.quantity,
				UnitPrice: part.Price,
			}

			total += item.Subtotal()
			order.Items = append(order.Items, item)
		}

		order.TotalAmount = total

		if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
			return err
		}

		for _, line := range lines {
			change, err := s.inventory.Decrement(ctx, tx, line.partID, line.quantity)
			if err != nil {
				return err
			}

			if event := s.inventory.EvaluateLowStock(change); event != nil {
				events = append(events, *event)
			}
		}

		if kind == checkoutKindCart {
			if err := s.cartRepo.ClearCartTx(ctx, tx, userID); err != nil {
				return errors.DatabaseError("Failed to clear cart").WithError(err)
			}
		}

		return nil
	})

	if txErr != nil {
		if stdErrors.Is(txErr, repository.ErrDuplicatePaymentIntent) {
			// Lost a race against a concurrent confirmation of the same
			// intent; the winner's order is the answer.
			fulfilled, err := s.orderRepo.GetOrderByPaymentIntentID(ctx, paymentIntentID)
			if err != nil {
				return nil, errors.DatabaseError("Failed to look up order").WithError(err)
			}

			metrics.PaymentConfirmations.WithLabelValues(kind, "duplicate").Inc()

			return fulfilled, nil
		}

		metrics.PaymentConfirmations.WithLabelValues(kind, "failed").Inc()

		if appErr, ok := errors.IsAppError(txErr); ok {
			return nil, appErr
		}

		return nil, errors.DatabaseError("Failed to book order").WithError(txErr)
	}

	metrics.PaymentConfirmations.WithLabelValues(kind, "ok").Inc()
	metrics.OrdersCreated.Inc()

	if user, err := s.userRepo.GetUserByID(ctx, userID); err == nil {
		events = append(events, models.Event{
			Kind:      models.EventOrderConfirmed,
			Recipient: user.Email,
			Subject:   "Your order is confirmed",
			Payload: map[string]any{
				"order_id":     order.ID.String(),
				"total_amount": order.TotalAmount,
			},
		})
	}

	dispatchAsync(ctx, s.dispatcher, events)

	return order, nil
}

type orderLine struct {
	partID   uuid.UUID
	quantity int
}

func (s *CheckoutService) resolveLines(ctx context.Context, tx *sql.Tx, kind string, userID uuid.UUID, intent *stripeSDK.PaymentIntent) ([]orderLine, error) {
	switch kind {
	case checkoutKindBuyNow:
		partID, err := uuid.Parse(intent.Metadata[metadataPartID])
		if err != nil {
			return nil, errors.InternalError("Payment intent is missing part metadata").WithError(err)
		}

		quantity, err := strconv.Atoi(intent.Metadata[metadataQuantity])
		if err != nil || quantity < 1 {
			return nil, errors.InternalError("Payment intent has an invalid quantity").WithError(err)
		}

		return []orderLine{{partID: partID, quantity: quantity}}, nil

	case checkoutKindCart:
		items, err := s.cartRepo.ListItemsByUserTx(ctx, tx, userID)
		if err != nil {
			return nil, errors.DatabaseError("Failed to load cart").WithError(err)
		}

		if len(items) == 0 {
			return nil, errors.EmptyCartError()
		}

		lines := make([]orderLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, orderLine{partID: item.PartID, quantity: item.Quantity})
		}

		return lines, nil

	default:
		return nil, errors.InternalError(fmt.Sprintf("Unknown checkout kind %q", kind))
	}
}

// AddCartItem and UpdateCartQuantity are thin cart maintenance operations;
// checkout reads whatever the cart holds when the payment confirms.
func (s *CheckoutService) AddCartItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error) {
	part, err := s.partRepo.GetPartByID(ctx, req.PartID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Part not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load part").WithError(err)
	}

	if !part.IsActive() {
		return nil, errors.BadRequestError("Part is not available for purchase")
	}

	item := &models.CartItem{
		UserID:   userID,
		PartID:   req.PartID,
		Quantity: req.Quantity,
	}

	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	return item, nil
}

func (s *CheckoutService) UpdateCartQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateCartQuantityRequest) error {
	err := s.cartRepo.UpdateQuantity(ctx, userID, req.PartID, req.Quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.NotFoundError("Item not found in the cart").WithError(err)
		}

		return errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return nil
}

func (s *CheckoutService) ListCartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.cartRepo.ListItemsByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	return items, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load order").WithError(err)
	}

	return order, nil
}
