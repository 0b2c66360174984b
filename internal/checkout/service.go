package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/internal/inventory"
	"github.com/sugarmaple/bakehouse-backend/internal/menu"
	"github.com/sugarmaple/bakehouse-backend/internal/settings"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/metrics"
)

// CartItemInput is one client-submitted cart line. Only id and qty are
// trusted; prices always come from the menu.
type CartItemInput struct {
	MenuItemID uuid.UUID
	Qty        int
}

// BuildSessionInput captures everything the customer submits at checkout.
type BuildSessionInput struct {
	Items           []CartItemInput
	FulfillmentType string
	Date            time.Time
	PickupWindowID  *uuid.UUID
	PostalCode      *string
	CustomerEmail   string
	CustomerName    string
	UserID          *uuid.UUID
	Notes           *string
}

// Session is what the storefront needs to redirect to Stripe.
type Session struct {
	SessionID string
	URL       string
	Totals    Totals
}

// Service builds Stripe checkout sessions from validated carts.
type Service interface {
	BuildSession(ctx context.Context, input BuildSessionInput) (*Session, error)
}

type urlProvider interface {
	SuccessURL() string
	CancelURL() string
}

type service struct {
	db       *gorm.DB
	menuRepo menu.Repository
	settings settings.Service
	stripe   StripeSessionClient
	urls     urlProvider
	metrics  *metrics.CheckoutMetrics
}

// NewService builds the checkout service.
func NewService(
	db *gorm.DB,
	menuRepo menu.Repository,
	settingsSvc settings.Service,
	stripeClient StripeSessionClient,
	urls urlProvider,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if menuRepo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	if settingsSvc == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if urls == nil {
		return nil, fmt.Errorf("url provider required")
	}
	return &service{
		db:       db,
		menuRepo: menuRepo,
		settings: settingsSvc,
		stripe:   stripeClient,
		urls:     urls,
		metrics:  checkoutMetrics,
	}, nil
}

func (s *service) BuildSession(ctx context.Context, input BuildSessionInput) (*Session, error) {
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	priced, err := s.priceCart(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.checkAvailability(ctx, priced, input.Date); err != nil {
		return nil, err
	}

	totals, err := s.computeTotals(ctx, priced, input.FulfillmentType == models.FulfillmentDelivery)
	if err != nil {
		return nil, err
	}

	payload := SessionPayload{
		Items:           priced,
		FulfillmentType: input.FulfillmentType,
		Date:            inventory.DateOnly(input.Date),
		PickupWindowID:  input.PickupWindowID,
		PostalCode:      input.PostalCode,
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
		UserID:          input.UserID,
		Notes:           input.Notes,
		Totals:          *totals,
	}
	meta, err := EncodeMetadata(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session metadata")
	}

	params := s.sessionParams(payload, meta)
	sess, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}

	s.metrics.IncSessionCreated()
	return &Session{
		SessionID: sess.ID,
		URL:       sess.URL,
		Totals:    *totals,
	}, nil
}

func (s *service) validateInput(ctx context.Context, input *BuildSessionInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, item := range input.Items {
		if item.MenuItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "menu item id required")
		}
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quantity %d", item.Qty))
		}
	}

	input.CustomerEmail = strings.TrimSpace(strings.ToLower(input.CustomerEmail))
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	if input.CustomerEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if input.CustomerName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}

	switch input.FulfillmentType {
	case models.FulfillmentPickup:
		if err := s.validatePickup(ctx, input); err != nil {
			return err
		}
	case models.FulfillmentDelivery:
		if err := s.validateDelivery(ctx, input); err != nil {
			return err
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid fulfillment type %q", input.FulfillmentType))
	}

	return s.validateDate(ctx, input.Date)
}

func (s *service) validatePickup(ctx context.Context, input *BuildSessionInput) error {
	if input.PickupWindowID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup window required")
	}
	window, err := s.menuRepo.FindPickupWindowByID(ctx, *input.PickupWindowID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup window not found")
	}
	if !window.Active {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup window is not active")
	}
	if int(input.Date.Weekday()) != window.Weekday {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup window does not fall on the chosen date")
	}
	return nil
}

func (s *service) validateDelivery(ctx context.Context, input *BuildSessionInput) error {
	if input.PostalCode == nil || strings.TrimSpace(*input.PostalCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery postal code required")
	}
	code := strings.TrimSpace(*input.PostalCode)
	input.PostalCode = &code

	allowed, err := s.settings.DeliveryPostalCodes(ctx)
	if err != nil {
		return err
	}
	for _, candidate := range allowed {
		if candidate == code {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("postal code %s is outside the delivery area", code))
}

func (s *service) validateDate(ctx context.Context, date time.Time) error {
	today := inventory.DateOnly(time.Now())
	target := inventory.DateOnly(date)
	if target.Before(today) {
		return pkgerrors.New(pkgerrors.CodeValidation, "fulfillment date is in the past")
	}

	maxDays, err := s.settings.MaxAdvanceDays(ctx)
	if err != nil {
		return err
	}
	if target.After(today.AddDate(0, 0, maxDays)) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("fulfillment date is more than %d days out", maxDays))
	}
	return nil
}

// priceCart re-prices every line from the menu, merging duplicate lines.
// Inactive items and lead times are enforced here, not trusted from the client.
func (s *service) priceCart(ctx context.Context, input BuildSessionInput) ([]PricedItem, error) {
	merged := map[uuid.UUID]int{}
	order := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if _, seen := merged[item.MenuItemID]; !seen {
			order = append(order, item.MenuItemID)
		}
		merged[item.MenuItemID] += item.Qty
	}

	items, err := s.menuRepo.FindItemsByIDs(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	today := inventory.DateOnly(time.Now())
	target := inventory.DateOnly(input.Date)

	priced := make([]PricedItem, 0, len(order))
	for _, id := range order {
		item, ok := byID[id]
		if !ok {
			// Deliberately vague: the id is not echoed back.
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more items are unavailable")
		}
		if !item.Active {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is no longer available", item.Name))
		}
		if item.LeadTimeDays > 0 && target.Before(today.AddDate(0, 0, item.LeadTimeDays)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s needs %d days notice", item.Name, item.LeadTimeDays))
		}
		priced = append(priced, PricedItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.PriceAmount,
			Qty:        merged[id],
		})
	}
	return priced, nil
}

// checkAvailability is a read-only floor check so customers learn about
// sold-out items before paying. The binding reservation happens at
// confirmation inside a transaction.
func (s *service) checkAvailability(ctx context.Context, priced []PricedItem, date time.Time) error {
	availability, err := inventory.AvailabilityForDate(ctx, s.db, date)
	if err != nil {
		return err
	}
	for _, item := range priced {
		day, ok := availability[item.MenuItemID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is not offered on this date", item.Name))
		}
		if day.Remaining < item.Qty {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("only %d of %s left for this date", day.Remaining, item.Name))
		}
	}
	return nil
}

func (s *service) computeTotals(ctx context.Context, priced []PricedItem, isDelivery bool) (*Totals, error) {
	subtotal := decimal.Zero
	for _, item := range priced {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
	}

	rate, err := s.settings.ServiceFeeRate(ctx)
	if err != nil {
		return nil, err
	}
	taxRate, err := s.settings.TaxRate(ctx)
	if err != nil {
		return nil, err
	}
	deliveryFee, err := s.settings.DeliveryFeeAmount(ctx)
	if err != nil {
		return nil, err
	}
	threshold, err := s.settings.FreeDeliveryThreshold(ctx)
	if err != nil {
		return nil, err
	}

	totals := ComputeTotals(subtotal, rate, taxRate, deliveryFee, threshold, isDelivery)
	return &totals, nil
}

func (s *service) sessionParams(payload SessionPayload, meta map[string]string) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(payload.Items)+3)
	for _, item := range payload.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Qty)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(Cents(item.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}
	if payload.Totals.ServiceFee.IsPositive() {
		lineItems = append(lineItems, feeLineItem("Service fee", payload.Totals.ServiceFee))
	}
	if payload.Totals.Tax.IsPositive() {
		lineItems = append(lineItems, feeLineItem("Sales tax", payload.Totals.Tax))
	}
	if payload.Totals.DeliveryFee.IsPositive() {
		lineItems = append(lineItems, feeLineItem("Delivery fee", payload.Totals.DeliveryFee))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.urls.SuccessURL()),
		CancelURL:     stripe.String(s.urls.CancelURL()),
		CustomerEmail: stripe.String(payload.CustomerEmail),
		LineItems:     lineItems,
	}
	params.Metadata = meta
	return params
}

func feeLineItem(name string, amount decimal.Decimal) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(Cents(amount)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}
