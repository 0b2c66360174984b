package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/sugarmaple/bakehouse-backend/internal/payments"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

type confirmer interface {
	ConfirmSession(ctx context.Context, sess *stripe.CheckoutSession, source string) (*models.Order, error)
}

// ServiceParams bundles the dependencies required to build the webhook service.
type ServiceParams struct {
	Confirm confirmer
	Logger  *logger.Logger
}

// Service routes verified Stripe events to the domain handlers.
type Service struct {
	confirm confirmer
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Confirm == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "confirm service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		confirm: params.Confirm,
		logg:    params.Logger,
	}, nil
}

// HandleEvent processes one verified event. Unknown event types are
// acknowledged without action so Stripe stops retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	ctx = s.logg.WithField(ctx, "stripe_event_type", string(event.Type))

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		// Sessions still awaiting async payment are acknowledged and
		// confirmed later by the async_payment_succeeded delivery.
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			s.logg.Info(ctx, "checkout session not yet paid, skipping")
			return nil
		}
		_, err := s.confirm.ConfirmSession(ctx, &sess, payments.SourceWebhook)
		return err
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:
		// No order exists yet for these sessions; nothing to undo.
		s.logg.Info(ctx, "checkout session ended without payment")
		return nil
	default:
		return nil
	}
}
