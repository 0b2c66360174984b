package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/internal/inventory"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/pagination"
)

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.InventoryDay{}))

	svc, err := NewService(NewRepository(db), gormTx{db: db})
	require.NoError(t, err)
	return svc, db
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus) *models.Order {
	t.Helper()
	date := inventory.DateOnly(time.Now().AddDate(0, 0, 2))
	itemID := uuid.New()

	require.NoError(t, db.Create(&models.InventoryDay{
		ID:          uuid.New(),
		MenuItemID:  itemID,
		Date:        date,
		DailyCap:    5,
		ReservedQty: 2,
	}).Error)

	order := &models.Order{
		ID:                uuid.New(),
		CustomerEmail:     "ada@example.com",
		CustomerName:      "Ada",
		Status:            status,
		FulfillmentType:   models.FulfillmentPickup,
		FulfillmentDate:   date,
		SubtotalAmount:    decimal.RequireFromString("9.00"),
		ServiceFeeAmount:  decimal.RequireFromString("0.45"),
		DeliveryFeeAmount: decimal.Zero,
		TotalAmount:       decimal.RequireFromString("9.45"),
		CurrencyCode:      "USD",
		StripeSessionID:   "cs_test_" + uuid.NewString(),
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		ID:              uuid.New(),
		OrderID:         order.ID,
		MenuItemID:      itemID,
		Name:            "Country Sourdough",
		UnitPriceAmount: decimal.RequireFromString("4.50"),
		Qty:             2,
		TotalAmount:     decimal.RequireFromString("9.00"),
	}).Error)
	return order
}

func TestUpdateStatusHappyPath(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	order := seedOrder(t, db, enums.OrderStatusPaid)
	admin := uuid.New()

	for _, target := range []enums.OrderStatus{
		enums.OrderStatusPrepping,
		enums.OrderStatusReady,
		enums.OrderStatusPickedUp,
	} {
		updated, err := svc.UpdateStatus(ctx, UpdateStatusInput{
			OrderID:     order.ID,
			Target:      target,
			ActorUserID: admin,
		})
		require.NoError(t, err)
		require.Equal(t, target, updated.Status)
	}
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	order := seedOrder(t, db, enums.OrderStatusPaid)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     order.ID,
		Target:      enums.OrderStatusPickedUp,
		ActorUserID: uuid.New(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestUpdateStatusTerminalIsFrozen(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	order := seedOrder(t, db, enums.OrderStatusPickedUp)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     order.ID,
		Target:      enums.OrderStatusCanceled,
		ActorUserID: uuid.New(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	order := seedOrder(t, db, enums.OrderStatusPrepping)

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     order.ID,
		Target:      enums.OrderStatusPrepping,
		ActorUserID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPrepping, updated.Status)
}

func TestCancelReleasesInventory(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	order := seedOrder(t, db, enums.OrderStatusPaid)

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     order.ID,
		Target:      enums.OrderStatusCanceled,
		ActorUserID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCanceled, updated.Status)
	require.NotNil(t, updated.CanceledAt)

	var day models.InventoryDay
	require.NoError(t, db.First(&day).Error)
	require.Zero(t, day.ReservedQty)
}

func TestGetForUserScoping(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	order := seedOrder(t, db, enums.OrderStatusPaid)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("user_id", owner).Error)

	got, err := svc.GetForUser(ctx, order.ID, owner)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)

	_, err = svc.GetForUser(ctx, order.ID, stranger)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListFiltersByStatus(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	seedOrder(t, db, enums.OrderStatusPaid)
	seedOrder(t, db, enums.OrderStatusReady)

	ready := enums.OrderStatusReady
	listed, err := svc.List(ctx, &ready, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, enums.OrderStatusReady, listed[0].Status)

	all, err := svc.List(ctx, nil, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
