package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/internal/checkout"
	"github.com/sugarmaple/bakehouse-backend/internal/inventory"
	"github.com/sugarmaple/bakehouse-backend/internal/orders"
	pkgdb "github.com/sugarmaple/bakehouse-backend/pkg/db"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
	"github.com/sugarmaple/bakehouse-backend/pkg/metrics"
)

// Confirmation sources, used for logging and metrics only. Both paths run
// the same code so whichever arrives first creates the order.
const (
	SourcePoll    = "poll"
	SourceWebhook = "webhook"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionFetcher interface {
	GetSession(ctx context.Context, id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// ConfirmService turns a paid Stripe session into exactly one order.
type ConfirmService interface {
	ConfirmBySessionID(ctx context.Context, sessionID, source string) (*models.Order, error)
	ConfirmSession(ctx context.Context, sess *stripe.CheckoutSession, source string) (*models.Order, error)
}

type confirmService struct {
	tx      txRunner
	repo    orders.Repository
	stripe  sessionFetcher
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
}

// NewConfirmService builds the payment confirmation service.
func NewConfirmService(
	tx txRunner,
	repo orders.Repository,
	stripeClient sessionFetcher,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
) (ConfirmService, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &confirmService{
		tx:      tx,
		repo:    repo,
		stripe:  stripeClient,
		logg:    logg,
		metrics: checkoutMetrics,
	}, nil
}

/// ConfirmBySessionID is the client-poll path: fetch the session from Stripe
// so payment status and metadata are authoritative, then confirm.
func (s *confirmService) ConfirmBySessionID(ctx context.Context, sessionID, source string) (*models.Order, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	sess, err := s.stripe.GetSession(ctx, sessionID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe session")
	}
	return s.ConfirmSession(ctx, sess, source)
}

// ConfirmSession creates the order for a paid session, or returns the
// existing one. The unique index on stripe_session_id arbitrates the race
// between the poll and the webhook; the loser re-reads the winner's row.
func (s *confirmService) ConfirmSession(ctx context.Context, sess *stripe.CheckoutSession, source string) (*models.Order, error) {
	if sess == nil || sess.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe session required")
	}
	ctx = s.logg.WithField(ctx, "stripe_session_id", sess.ID)

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not completed")
	}

	if existing, err := s.findExisting(ctx, sess.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	payload, err := checkout.DecodeMetadata(sess.Metadata)
	if err != nil {
		return nil, err
	}

	order, err := s.createOrder(ctx, sess, payload)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeConflict {
			// Lost the race; the other path already created it.
			return s.mustFindExisting(ctx, sess.ID)
		}
		return nil, err
	}

	s.metrics.IncOrderConfirmed(source)
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), fmt.Sprintf("order confirmed via %s", source))
	return order, nil
}

func (s *confirmService) findExisting(ctx context.Context, sessionID string) (*models.Order, error) {
	order, err := s.repo.FindByStripeSessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by session")
	}
	return order, nil
}

func (s *confirmService) mustFindExisting(ctx context.Context, sessionID string) (*models.Order, error) {
	order, err := s.findExisting(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order vanished after unique conflict")
	}
	return order, nil
}

// createOrder reserves inventory and writes the order in one transaction.
// A reservation failure aborts the whole confirmation; nothing is partially
// sold and Stripe's webhook retries give the bakery a chance to intervene.
func (s *confirmService) createOrder(ctx context.Context, sess *stripe.CheckoutSession, payload *checkout.SessionPayload) (*models.Order, error) {
	order := buildOrder(sess, payload)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		requests := make([]inventory.ReservationRequest, 0, len(payload.Items))
		for _, item := range payload.Items {
			requests = append(requests, inventory.ReservationRequest{
				MenuItemID: item.MenuItemID,
				Date:       payload.Date,
				Qty:        item.Qty,
			})
		}
		results, err := inventory.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		for _, result := range results {
			if !result.Reserved {
				s.metrics.IncReservationDenied()
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("inventory no longer available: %s", result.Reason))
			}
		}

		if err := repo.Create(ctx, order); err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already confirmed for session")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, models.OrderItem{
				ID:              uuid.New(),
				OrderID:         order.ID,
				MenuItemID:      item.MenuItemID,
				Name:            item.Name,
				UnitPriceAmount: item.UnitPrice,
				Qty:             item.Qty,
				TotalAmount:     item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))),
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func buildOrder(sess *stripe.CheckoutSession, payload *checkout.SessionPayload) *models.Order {
	order := &models.Order{
		ID:                 uuid.New(),
		UserID:             payload.UserID,
		CustomerEmail:      payload.CustomerEmail,
		CustomerName:       payload.CustomerName,
		Status:             enums.OrderStatusPaid,
		FulfillmentType:    payload.FulfillmentType,
		FulfillmentDate:    payload.Date,
		PickupWindowID:     payload.PickupWindowID,
		DeliveryPostalCode: payload.PostalCode,
		SubtotalAmount:     payload.Totals.Subtotal,
		ServiceFeeAmount:   payload.Totals.ServiceFee,
		TaxAmount:          payload.Totals.Tax,
		DeliveryFeeAmount:  payload.Totals.DeliveryFee,
		TotalAmount:        payload.Totals.Total,
		CurrencyCode:       "USD",
		StripeSessionID:    sess.ID,
		Notes:              payload.Notes,
	}
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		intentID := sess.PaymentIntent.ID
		order.StripePaymentIntentID = &intentID
	}
	return order
}
