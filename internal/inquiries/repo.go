package inquiries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	"github.com/sugarmaple/bakehouse-backend/pkg/pagination"
)

// Repository is the persistence surface for inquiries and quotes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, inquiry *models.Inquiry) error
	CreateImages(ctx context.Context, images []models.InquiryImage) error
	CreateQuote(ctx context.Context, quote *models.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, status *enums.InquiryStatus, params pagination.Params) ([]models.Inquiry, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inquiry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InquiryStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inquiries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	return r.db.WithContext(ctx).Omit("Images", "Quotes").Create(inquiry).Error
}

func (r *repository) CreateImages(ctx context.Context, images []models.InquiryImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *repository) CreateQuote(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Quotes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&inquiry).Error
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *repository) List(ctx context.Context, status *enums.InquiryStatus, params pagination.Params) ([]models.Inquiry, error) {
	query := r.db.WithContext(ctx).Preload("Quotes")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.page(query, params)
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inquiry, error) {
	query := r.db.WithContext(ctx).
		Preload("Quotes").
		Where("user_id = ?", userID)
	return r.page(query, params)
}

func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.Inquiry, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var inquiries []models.Inquiry
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&inquiries).Error
	if err != nil {
		return nil, err
	}
	return inquiries, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InquiryStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inquiry_id = ?", id).Delete(&models.Quote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("inquiry_id = ?", id).Delete(&models.InquiryImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Inquiry{}).Error
	})
}
