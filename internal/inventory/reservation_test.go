package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

func TestReserve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	croissant := uuid.New()
	galette := uuid.New()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	seedDay(t, db, croissant, date, 5, 0)
	seedDay(t, db, galette, date, 1, 0)

	requests := []ReservationRequest{
		{MenuItemID: croissant, Date: date, Qty: 3},
		{MenuItemID: croissant, Date: date, Qty: 4},
		{MenuItemID: galette, Date: date, Qty: 1},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := Reserve(ctx, tx, requests)
		if terr != nil {
			return terr
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if !results[0].Reserved || results[0].Reason != "" {
			t.Fatalf("expected first reservation to succeed: %+v", results[0])
		}
		if results[1].Reserved || results[1].Reason == "" {
			t.Fatalf("expected second reservation to fail with reason: %+v", results[1])
		}
		if !results[2].Reserved {
			t.Fatalf("expected third reservation to succeed: %+v", results[2])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reserve transaction: %v", err)
	}

	if got := loadDay(t, db, croissant, date); got.ReservedQty != 3 {
		t.Fatalf("unexpected croissant state: %+v", got)
	}
	if got := loadDay(t, db, galette, date); got.ReservedQty != 1 {
		t.Fatalf("unexpected galette state: %+v", got)
	}
}

func TestReserveUnscheduledDate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	results, err := Reserve(ctx, db, []ReservationRequest{{MenuItemID: uuid.New(), Date: date, Qty: 1}})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if results[0].Reserved {
		t.Fatal("expected reservation to fail for unscheduled date")
	}
	if results[0].Reason != "item is not offered on this date" {
		t.Fatalf("unexpected reason: %q", results[0].Reason)
	}
}

func TestReserveInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	_, err := Reserve(ctx, db, []ReservationRequest{{MenuItemID: uuid.New(), Qty: 0}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReleaseGuardsNegative(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	item := uuid.New()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	seedDay(t, db, item, date, 5, 2)

	if err := Release(ctx, db, item, date, 2); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := loadDay(t, db, item, date); got.ReservedQty != 0 {
		t.Fatalf("expected zero reserved, got %+v", got)
	}

	err := Release(ctx, db, item, date, 1)
	if err == nil {
		t.Fatal("expected state conflict on over-release")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScheduleDayResize(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	item := uuid.New()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	day, err := ScheduleDay(ctx, db, item, date, 10)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if day.DailyCap != 10 {
		t.Fatalf("unexpected cap: %d", day.DailyCap)
	}

	seedReserved(t, db, item, date, 4)

	if _, err := ScheduleDay(ctx, db, item, date, 6); err != nil {
		t.Fatalf("resize above reserved: %v", err)
	}

	_, err = ScheduleDay(ctx, db, item, date, 3)
	if err == nil {
		t.Fatal("expected state conflict shrinking below reserved")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func seedDay(t *testing.T, db *gorm.DB, itemID uuid.UUID, date time.Time, cap, reserved int) {
	t.Helper()
	day := models.InventoryDay{
		ID:          uuid.New(),
		MenuItemID:  itemID,
		Date:        DateOnly(date),
		DailyCap:    cap,
		ReservedQty: reserved,
	}
	if err := db.Create(&day).Error; err != nil {
		t.Fatalf("seed inventory day: %v", err)
	}
}

func seedReserved(t *testing.T, db *gorm.DB, itemID uuid.UUID, date time.Time, qty int) {
	t.Helper()
	err := db.Model(&models.InventoryDay{}).
		Where("menu_item_id = ? AND date = ?", itemID, DateOnly(date)).
		UpdateColumn("reserved_qty", qty).Error
	if err != nil {
		t.Fatalf("seed reserved qty: %v", err)
	}
}

func loadDay(t *testing.T, db *gorm.DB, itemID uuid.UUID, date time.Time) models.InventoryDay {
	t.Helper()
	var day models.InventoryDay
	err := db.Where("menu_item_id = ? AND date = ?", itemID, DateOnly(date)).First(&day).Error
	if err != nil {
		t.Fatalf("load inventory day: %v", err)
	}
	return day
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryDay{}); err != nil {
		t.Fatalf("migrate inventory: %v", err)
	}
	return db
}
