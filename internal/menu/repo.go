package menu

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
)

// Repository is the persistence surface for menu items and pickup windows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.MenuItem) error
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	FindItemBySlug(ctx context.Context, slug string) (*models.MenuItem, error)
	FindItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error)
	ListActiveItems(ctx context.Context) ([]models.MenuItem, error)
	ListItems(ctx context.Context) ([]models.MenuItem, error)
	ListActivePickupWindows(ctx context.Context) ([]models.PickupWindow, error)
	FindPickupWindowByID(ctx context.Context, id uuid.UUID) (*models.PickupWindow, error)
	CreatePickupWindow(ctx context.Context, window *models.PickupWindow) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a menu repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemBySlug(ctx context.Context, slug string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.MenuItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListActiveItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("category ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListActivePickupWindows(ctx context.Context) ([]models.PickupWindow, error) {
	var windows []models.PickupWindow
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("weekday ASC, start_time ASC").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *repository) FindPickupWindowByID(ctx context.Context, id uuid.UUID) (*models.PickupWindow, error) {
	var window models.PickupWindow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&window).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func (r *repository) CreatePickupWindow(ctx context.Context, window *models.PickupWindow) error {
	return r.db.WithContext(ctx).Create(window).Error
}
