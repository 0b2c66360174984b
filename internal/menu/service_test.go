package menu

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
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:menu_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.MenuItem{}, &models.InventoryDay{}, &models.PickupWindow{}))

	svc, err := NewService(NewRepository(db), db)
	require.NoError(t, err)
	return svc, db
}

func TestCreateItemGeneratesSlug(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{
		Name:        "Maple Pecan Danish",
		Category:    enums.MenuCategoryPastry,
		PriceAmount: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)
	require.Equal(t, "maple-pecan-danish", item.Slug)
	require.True(t, item.Active)

	_, err = svc.CreateItem(ctx, CreateItemInput{
		Name:        "Maple Pecan Danish",
		Category:    enums.MenuCategoryPastry,
		PriceAmount: decimal.RequireFromString("4.50"),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateItemRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.CreateItem(context.Background(), CreateItemInput{
		Name:        "Free Bread",
		Category:    enums.MenuCategoryBread,
		PriceAmount: decimal.Zero,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestMenuForDate(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	ctx := context.Background()
	date := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)

	sourdough, err := svc.CreateItem(ctx, CreateItemInput{
		Name:        "Country Sourdough",
		Category:    enums.MenuCategoryBread,
		PriceAmount: decimal.RequireFromString("9.00"),
	})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, CreateItemInput{
		Name:        "Rye Loaf",
		Category:    enums.MenuCategoryBread,
		PriceAmount: decimal.RequireFromString("8.00"),
	})
	require.NoError(t, err)

	_, err = svc.ScheduleDay(ctx, sourdough.ID, date, 12)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.InventoryDay{}).
		Where("menu_item_id = ?", sourdough.ID).
		UpdateColumn("reserved_qty", 5).Error)

	entries, err := svc.MenuForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[uuid.UUID]ItemAvailability{}
	for _, entry := range entries {
		byID[entry.Item.ID] = entry
	}
	require.True(t, byID[sourdough.ID].Scheduled)
	require.Equal(t, 7, byID[sourdough.ID].Remaining)

	for id, entry := range byID {
		if id != sourdough.ID {
			require.False(t, entry.Scheduled)
			require.Zero(t, entry.Remaining)
		}
	}
}

func TestScheduleDayUnknownItem(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.ScheduleDay(context.Background(), uuid.New(), time.Now(), 5)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreatePickupWindowValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	window, err := svc.CreatePickupWindow(ctx, PickupWindowInput{Weekday: 6, StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)
	require.Equal(t, 6, window.Weekday)

	_, err = svc.CreatePickupWindow(ctx, PickupWindowInput{Weekday: 2, StartTime: "12:00", EndTime: "09:00"})
	require.Error(t, err)

	_, err = svc.CreatePickupWindow(ctx, PickupWindowInput{Weekday: 9, StartTime: "09:00", EndTime: "12:00"})
	require.Error(t, err)

	windows, err := svc.ListPickupWindows(ctx)
	require.NoError(t, err)
	require.Len(t, windows, 1)
}

func TestInventoryPackageWiring(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	ctx := context.Background()
	date := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)

	item, err := svc.CreateItem(ctx, CreateItemInput{
		Name:        "Galette",
		Category:    enums.MenuCategorySeasonal,
		PriceAmount: decimal.RequireFromString("24.00"),
	})
	require.NoError(t, err)

	_, err = svc.ScheduleDay(ctx, item.ID, date, 2)
	require.NoError(t, err)

	results, err := inventory.Reserve(ctx, db, []inventory.ReservationRequest{
		{MenuItemID: item.ID, Date: date, Qty: 2},
	})
	require.NoError(t, err)
	require.True(t, results[0].Reserved)

	entries, err := svc.MenuForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].Scheduled)
	require.Zero(t, entries[0].Remaining)
}
