package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/sugarmaple/bakehouse-backend/pkg/db"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

// DayAvailability is the storefront view of one item's remaining stock.
type DayAvailability struct {
	MenuItemID uuid.UUID
	Date       time.Time
	DailyCap   int
	Remaining  int
}

// AvailabilityForDate returns the remaining quantity for every scheduled
// item on the given date, keyed by menu item id.
func AvailabilityForDate(ctx context.Context, db *gorm.DB, date time.Time) (map[uuid.UUID]DayAvailability, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db required")
	}

	var days []models.InventoryDay
	err := db.WithContext(ctx).
		Where("date = ?", DateOnly(date)).
		Find(&days).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory days")
	}

	out := make(map[uuid.UUID]DayAvailability, len(days))
	for _, day := range days {
		out[day.MenuItemID] = DayAvailability{
			MenuItemID: day.MenuItemID,
			Date:       day.Date,
			DailyCap:   day.DailyCap,
			Remaining:  day.Available(),
		}
	}
	return out, nil
}

// ScheduleDay creates or resizes the availability row for an item on a date.
// Shrinking below the already-reserved quantity is rejected.
func ScheduleDay(ctx context.Context, db *gorm.DB, menuItemID uuid.UUID, date time.Time, dailyCap int) (*models.InventoryDay, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db required")
	}
	if menuItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id required")
	}
	if dailyCap < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily cap must not be negative")
	}

	day := &models.InventoryDay{
		ID:         uuid.New(),
		MenuItemID: menuItemID,
		Date:       DateOnly(date),
		DailyCap:   dailyCap,
	}
	err := db.WithContext(ctx).Create(day).Error
	if err == nil {
		return day, nil
	}
	if !pkgdb.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory day")
	}

	// Row already exists, resize the cap but never below what is reserved.
	update := db.WithContext(ctx).
		Model(&models.InventoryDay{}).
		Where("menu_item_id = ? AND date = ? AND reserved_qty <= ?", menuItemID, day.Date, dailyCap).
		UpdateColumn("daily_cap", dailyCap)
	if update.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, update.Error, "resize inventory day")
	}
	if update.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "daily cap below reserved quantity")
	}

	var existing models.InventoryDay
	if err := db.WithContext(ctx).Where("menu_item_id = ? AND date = ?", menuItemID, day.Date).First(&existing).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory day")
	}
	return &existing, nil
}
