package menu

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/internal/inventory"
	pkgdb "github.com/sugarmaple/bakehouse-backend/pkg/db"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// ItemAvailability pairs a menu item with its remaining stock for a date.
type ItemAvailability struct {
	Item      models.MenuItem
	Scheduled bool
	Remaining int
}

// CreateItemInput carries the admin fields for a new menu item.
type CreateItemInput struct {
	Name         string
	Slug         string
	Description  string
	Category     enums.MenuCategory
	PriceAmount  decimal.Decimal
	LeadTimeDays int
}

// UpdateItemInput carries partial updates; nil fields are untouched.
type UpdateItemInput struct {
	Name         *string
	Description  *string
	Category     *enums.MenuCategory
	PriceAmount  *decimal.Decimal
	Active       *bool
	LeadTimeDays *int
}

// PickupWindowInput defines a recurring weekly slot.
type PickupWindowInput struct {
	Weekday   int
	StartTime string
	EndTime   string
}

// Service exposes storefront menu reads and admin menu management.
type Service interface {
	MenuForDate(ctx context.Context, date time.Time) ([]ItemAvailability, error)
	ItemBySlug(ctx context.Context, slug string) (*models.MenuItem, error)
	ListItems(ctx context.Context) ([]models.MenuItem, error)
	CreateItem(ctx context.Context, input CreateItemInput) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.MenuItem, error)
	ScheduleDay(ctx context.Context, itemID uuid.UUID, date time.Time, dailyCap int) (*models.InventoryDay, error)
	ListPickupWindows(ctx context.Context) ([]models.PickupWindow, error)
	CreatePickupWindow(ctx context.Context, input PickupWindowInput) (*models.PickupWindow, error)
}

type service struct {
	repo Repository
	db   *gorm.DB
}

// NewService builds a menu service with the required dependencies.
func NewService(repo Repository, db *gorm.DB) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &service{repo: repo, db: db}, nil
}

func (s *service) MenuForDate(ctx context.Context, date time.Time) ([]ItemAvailability, error) {
	items, err := s.repo.ListActiveItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}
	availability, err := inventory.AvailabilityForDate(ctx, s.db, date)
	if err != nil {
		return nil, err
	}

	out := make([]ItemAvailability, 0, len(items))
	for _, item := range items {
		entry := ItemAvailability{Item: item}
		if day, ok := availability[item.ID]; ok {
			entry.Scheduled = true
			entry.Remaining = day.Remaining
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *service) ItemBySlug(ctx context.Context, slug string) (*models.MenuItem, error) {
	item, err := s.repo.FindItemBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}
	return items, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.MenuItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if input.PriceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.LeadTimeDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead time must not be negative")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	item := &models.MenuItem{
		ID:           uuid.New(),
		Name:         name,
		Slug:         slug,
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		PriceAmount:  input.PriceAmount,
		CurrencyCode: "USD",
		Active:       true,
		LeadTimeDays: input.LeadTimeDays,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("slug %q already in use", slug))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu item")
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.MenuItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
		}
		item.Name = name
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
		}
		item.Category = *input.Category
	}
	if input.PriceAmount != nil {
		if input.PriceAmount.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		item.PriceAmount = *input.PriceAmount
	}
	if input.Active != nil {
		item.Active = *input.Active
	}
	if input.LeadTimeDays != nil {
		if *input.LeadTimeDays < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead time must not be negative")
		}
		item.LeadTimeDays = *input.LeadTimeDays
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}
	return item, nil
}

func (s *service) ScheduleDay(ctx context.Context, itemID uuid.UUID, date time.Time, dailyCap int) (*models.InventoryDay, error) {
	if _, err := s.repo.FindItemByID(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return inventory.ScheduleDay(ctx, s.db, itemID, date, dailyCap)
}

func (s *service) ListPickupWindows(ctx context.Context) ([]models.PickupWindow, error) {
	windows, err := s.repo.ListActivePickupWindows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pickup windows")
	}
	return windows, nil
}

func (s *service) CreatePickupWindow(ctx context.Context, input PickupWindowInput) (*models.PickupWindow, error) {
	if input.Weekday < 0 || input.Weekday > 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weekday must be 0 through 6")
	}
	start, err := time.Parse("15:04", input.StartTime)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start time must be HH:MM")
	}
	end, err := time.Parse("15:04", input.EndTime)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end time must be HH:MM")
	}
	if !end.After(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end time must be after start time")
	}

	window := &models.PickupWindow{
		ID:        uuid.New(),
		Weekday:   input.Weekday,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Active:    true,
	}
	if err := s.repo.CreatePickupWindow(ctx, window); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pickup window")
	}
	return window, nil
}

// Slugify lowercases and strips the name down to a URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
