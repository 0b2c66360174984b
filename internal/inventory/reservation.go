package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

// ReservationRequest asks for qty units of an item on a fulfillment date.
type ReservationRequest struct {
	MenuItemID uuid.UUID
	Date       time.Time
	Qty        int
}

// ReservationResult reports the per-item outcome. Reserved is false when the
// daily cap cannot absorb the quantity; Reason carries the customer-safe text.
type ReservationResult struct {
	MenuItemID uuid.UUID
	Qty        int
	Reserved   bool
	Reason     string
}

// Reserve attempts to reserve every request inside the caller's transaction.
// Each row moves through a guarded UPDATE so two concurrent confirmations
// cannot both squeeze past the cap. A failed request does not roll anything
// back here; callers decide whether partial results abort the transaction.
func Reserve(ctx context.Context, tx *gorm.DB, requests []ReservationRequest) ([]ReservationResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}

	results := make([]ReservationResult, 0, len(requests))
	for _, req := range requests {
		if req.MenuItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id required")
		}
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quantity %d", req.Qty))
		}

		date := DateOnly(req.Date)
		update := tx.WithContext(ctx).
			Model(&models.InventoryDay{}).
			Where("menu_item_id = ? AND date = ? AND reserved_qty + ? <= daily_cap", req.MenuItemID, date, req.Qty).
			UpdateColumn("reserved_qty", gorm.Expr("reserved_qty + ?", req.Qty))
		if update.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, update.Error, "reserve inventory")
		}

		result := ReservationResult{MenuItemID: req.MenuItemID, Qty: req.Qty, Reserved: update.RowsAffected == 1}
		if !result.Reserved {
			reason, err := denialReason(ctx, tx, req.MenuItemID, date)
			if err != nil {
				return nil, err
			}
			result.Reason = reason
		}
		results = append(results, result)
	}
	return results, nil
}

// Release returns previously reserved units, guarded so the counter can
// never go negative when a release is retried.
func Release(ctx context.Context, tx *gorm.DB, menuItemID uuid.UUID, date time.Time, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if menuItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "menu item id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quantity %d", qty))
	}

	update := tx.WithContext(ctx).
		Model(&models.InventoryDay{}).
		Where("menu_item_id = ? AND date = ? AND reserved_qty >= ?", menuItemID, DateOnly(date), qty).
		UpdateColumn("reserved_qty", gorm.Expr("reserved_qty - ?", qty))
	if update.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, update.Error, "release inventory")
	}
	if update.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "reserved quantity does not cover release")
	}
	return nil
}

// DateOnly truncates to midnight UTC so every date comparison hits the same row.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func denialReason(ctx context.Context, tx *gorm.DB, menuItemID uuid.UUID, date time.Time) (string, error) {
	var day models.InventoryDay
	err := tx.WithContext(ctx).
		Where("menu_item_id = ? AND date = ?", menuItemID, date).
		First(&day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "item is not offered on this date", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory day")
	}
	if remaining := day.Available(); remaining > 0 {
		return fmt.Sprintf("only %d left for this date", remaining), nil
	}
	return "sold out for this date", nil
}
