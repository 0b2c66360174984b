package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/internal/inventory"
	"github.com/sugarmaple/bakehouse-backend/internal/menu"
	"github.com/sugarmaple/bakehouse-backend/internal/settings"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

type stubStripe struct {
	created *stripe.CheckoutSessionParams
	err     error
}

func (s *stubStripe) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = params
	return &stripe.CheckoutSession{
		ID:  "cs_test_" + uuid.NewString(),
		URL: "https://checkout.stripe.com/c/pay/test",
	}, nil
}

func (s *stubStripe) GetSession(ctx context.Context, id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, nil
}

type stubURLs struct{}

func (stubURLs) SuccessURL() string {
	return "https://shop.example.com/orders/confirm?session_id={CHECKOUT_SESSION_ID}"
}

func (stubURLs) CancelURL() string { return "https://shop.example.com/cart" }

type fixture struct {
	svc    Service
	db     *gorm.DB
	stripe *stubStripe
	item   *models.MenuItem
	window *models.PickupWindow
	date   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.MenuItem{}, &models.InventoryDay{}, &models.PickupWindow{}, &models.Setting{},
	))

	settingsSvc, err := settings.NewService(settings.NewRepository(db))
	require.NoError(t, err)
	require.NoError(t, settingsSvc.Update(context.Background(), settings.KeyDeliveryPostalCodes, `["97201","97202"]`))

	stripeStub := &stubStripe{}
	svc, err := NewService(db, menu.NewRepository(db), settingsSvc, stripeStub, stubURLs{}, nil)
	require.NoError(t, err)

	date := inventory.DateOnly(time.Now().AddDate(0, 0, 3))

	item := &models.MenuItem{
		ID:          uuid.New(),
		Name:        "Country Sourdough",
		Slug:        "country-sourdough",
		Category:    enums.MenuCategoryBread,
		PriceAmount: decimal.RequireFromString("4.50"),
		Active:      true,
	}
	require.NoError(t, db.Create(item).Error)
	require.NoError(t, db.Create(&models.InventoryDay{
		ID:         uuid.New(),
		MenuItemID: item.ID,
		Date:       date,
		DailyCap:   10,
	}).Error)

	window := &models.PickupWindow{
		ID:        uuid.New(),
		Weekday:   int(date.Weekday()),
		StartTime: "09:00",
		EndTime:   "12:00",
		Active:    true,
	}
	require.NoError(t, db.Create(window).Error)

	return &fixture{svc: svc, db: db, stripe: stripeStub, item: item, window: window, date: date}
}

func (f *fixture) pickupInput(qty int) BuildSessionInput {
	return BuildSessionInput{
		Items:           []CartItemInput{{MenuItemID: f.item.ID, Qty: qty}},
		FulfillmentType: models.FulfillmentPickup,
		Date:            f.date,
		PickupWindowID:  &f.window.ID,
		CustomerEmail:   "ada@example.com",
		CustomerName:    "Ada",
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "error %v is not typed", err)
	require.Equal(t, code, typed.Code())
}

func TestBuildSessionPickup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sess, err := f.svc.BuildSession(context.Background(), f.pickupInput(2))
	require.NoError(t, err)
	require.NotEmpty(t, sess.SessionID)
	require.NotEmpty(t, sess.URL)

	// 2 x 4.50 = 9.00 subtotal, 0.45 service fee, no delivery fee.
	require.True(t, sess.Totals.Subtotal.Equal(d("9.00")))
	require.True(t, sess.Totals.ServiceFee.Equal(d("0.45")))
	require.True(t, sess.Totals.Total.Equal(d("9.45")))

	require.NotNil(t, f.stripe.created)
	payload, err := DecodeMetadata(f.stripe.created.Metadata)
	require.NoError(t, err)
	require.Len(t, payload.Items, 1)
	require.Equal(t, f.item.ID, payload.Items[0].MenuItemID)
	require.Equal(t, 2, payload.Items[0].Qty)
	require.True(t, payload.Items[0].UnitPrice.Equal(d("4.50")))
	require.Equal(t, models.FulfillmentPickup, payload.FulfillmentType)

	// Cart line items plus the service fee line.
	require.Len(t, f.stripe.created.LineItems, 2)
}

func TestBuildSessionEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	input := f.pickupInput(1)
	input.Items = nil
	_, err := f.svc.BuildSession(context.Background(), input)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestBuildSessionClientPriceIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// Duplicate lines merge and still price from the menu.
	input := f.pickupInput(1)
	input.Items = append(input.Items, CartItemInput{MenuItemID: f.item.ID, Qty: 1})
	sess, err := f.svc.BuildSession(context.Background(), input)
	require.NoError(t, err)
	require.True(t, sess.Totals.Subtotal.Equal(d("9.00")))
}

func TestBuildSessionInsufficientAvailability(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.BuildSession(context.Background(), f.pickupInput(11))
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestBuildSessionInactiveItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.db.Model(f.item).UpdateColumn("active", false).Error)
	_, err := f.svc.BuildSession(context.Background(), f.pickupInput(1))
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestBuildSessionDeliveryPostalCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	outside := "99999"
	input := f.pickupInput(2)
	input.FulfillmentType = models.FulfillmentDelivery
	input.PickupWindowID = nil
	input.PostalCode = &outside
	_, err := f.svc.BuildSession(ctx, input)
	requireCode(t, err, pkgerrors.CodeValidation)

	inside := "97201"
	input.PostalCode = &inside
	sess, err := f.svc.BuildSession(ctx, input)
	require.NoError(t, err)

	// 9.00 subtotal is under the 50.00 threshold, delivery fee applies.
	require.True(t, sess.Totals.DeliveryFee.Equal(d("8.00")))
	require.True(t, sess.Totals.Total.Equal(d("17.45")))
}

func TestBuildSessionDateBounds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// Same weekday as the pickup window so only the date bound can fail.
	past := f.pickupInput(1)
	past.Date = f.date.AddDate(0, 0, -7)
	_, err := f.svc.BuildSession(ctx, past)
	requireCode(t, err, pkgerrors.CodeValidation)

	tooFar := f.pickupInput(1)
	tooFar.Date = f.date.AddDate(0, 0, 28)
	_, err = f.svc.BuildSession(ctx, tooFar)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestBuildSessionLeadTime(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.db.Model(f.item).UpdateColumn("lead_time_days", 5).Error)
	_, err := f.svc.BuildSession(context.Background(), f.pickupInput(1))
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestBuildSessionPickupWindowWeekdayMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	wrongDay := &models.PickupWindow{
		ID:        uuid.New(),
		Weekday:   (int(f.date.Weekday()) + 1) % 7,
		StartTime: "09:00",
		EndTime:   "12:00",
		Active:    true,
	}
	require.NoError(t, f.db.Create(wrongDay).Error)

	input := f.pickupInput(1)
	input.PickupWindowID = &wrongDay.ID
	_, err := f.svc.BuildSession(context.Background(), input)
	requireCode(t, err, pkgerrors.CodeValidation)
}
