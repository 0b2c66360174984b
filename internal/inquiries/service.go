package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/internal/inventory"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/pagination"
)

const maxInquiryImages = 6

// CreateInput captures a customer's custom-cake request.
type CreateInput struct {
	UserID          *uuid.UUID
	CustomerEmail   string
	CustomerName    string
	EventType       string
	EventDate       time.Time
	Description     string
	ServingCount    *int
	TierCount       *int
	Shape           *string
	DecorationStyle *string
	BudgetAmount    *decimal.Decimal
	ImageURLs       []string
}

// QuoteInput is a staff-priced offer for an inquiry.
type QuoteInput struct {
	InquiryID uuid.UUID
	Amount    decimal.Decimal
	Notes     *string
	ExpiresAt *time.Time
	CreatedBy uuid.UUID
}

// UpdateStatusInput captures an admin transition request.
type UpdateStatusInput struct {
	InquiryID   uuid.UUID
	Target      enums.InquiryStatus
	ActorUserID uuid.UUID
}

// Service exposes inquiry workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Inquiry, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, status *enums.InquiryStatus, params pagination.Params) ([]models.Inquiry, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inquiry, error)
	AddQuote(ctx context.Context, input QuoteInput) (*models.Inquiry, error)
	Accept(ctx context.Context, id, userID uuid.UUID) (*models.Inquiry, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Inquiry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an inquiries service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inquiries repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Inquiry, error) {
	email := strings.TrimSpace(strings.ToLower(input.CustomerEmail))
	name := strings.TrimSpace(input.CustomerName)
	eventType := strings.TrimSpace(input.EventType)
	description := strings.TrimSpace(input.Description)

	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if eventType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event type required")
	}
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	// Custom cakes need lead time; requests closer than a month out are rejected.
	minEventDate := inventory.DateOnly(time.Now().AddDate(0, 1, 0))
	if inventory.DateOnly(input.EventDate).Before(minEventDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event date must be at least one month out")
	}
	if input.ServingCount != nil && *input.ServingCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serving count must be positive")
	}
	if input.TierCount != nil && *input.TierCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier count must be positive")
	}
	if input.BudgetAmount != nil && input.BudgetAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "budget must not be negative")
	}
	if len(input.ImageURLs) > maxInquiryImages {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("at most %d reference images allowed", maxInquiryImages))
	}

	inquiry := &models.Inquiry{
		ID:              uuid.New(),
		UserID:          input.UserID,
		CustomerEmail:   email,
		CustomerName:    name,
		Status:          enums.InquiryStatusNew,
		EventType:       eventType,
		EventDate:       inventory.DateOnly(input.EventDate),
		Description:     description,
		ServingCount:    input.ServingCount,
		TierCount:       input.TierCount,
		Shape:           input.Shape,
		DecorationStyle: input.DecorationStyle,
		BudgetAmount:    input.BudgetAmount,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, inquiry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inquiry")
		}
		images := make([]models.InquiryImage, 0, len(input.ImageURLs))
		for _, url := range input.ImageURLs {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			images = append(images, models.InquiryImage{
				ID:        uuid.New(),
				InquiryID: inquiry.ID,
				URL:       url,
			})
		}
		if err := repo.CreateImages(ctx, images); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inquiry images")
		}
		inquiry.Images = images
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry id required")
	}
	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry")
	}
	return inquiry, nil
}

func (s *service) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.UserID == nil || *inquiry.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
	}
	return inquiry, nil
}

func (s *service) List(ctx context.Context, status *enums.InquiryStatus, params pagination.Params) ([]models.Inquiry, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid inquiry status %q", *status))
	}
	inquiries, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inquiries")
	}
	return inquiries, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inquiry, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	inquiries, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inquiries")
	}
	return inquiries, nil
}

// AddQuote attaches a priced offer and moves the inquiry to quoted. Quoting
// again while already quoted replaces the active quote without a transition.
func (s *service) AddQuote(ctx context.Context, input QuoteInput) (*models.Inquiry, error) {
	if input.InquiryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry id required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote amount must be positive")
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote expiry is in the past")
	}

	var updated *models.Inquiry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inquiry, err := repo.FindByID(ctx, input.InquiryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry")
		}

		requote := inquiry.Status == enums.InquiryStatusQuoted
		if !requote && !CanTransition(inquiry.Status, enums.InquiryStatusQuoted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot quote inquiry in status %s", inquiry.Status))
		}

		quote := &models.Quote{
			ID:        uuid.New(),
			InquiryID: inquiry.ID,
			Amount:    input.Amount,
			Notes:     input.Notes,
			ExpiresAt: input.ExpiresAt,
			CreatedBy: input.CreatedBy,
		}
		if err := repo.CreateQuote(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
		}

		if !requote {
			if err := repo.UpdateStatus(ctx, inquiry.ID, enums.InquiryStatusQuoted); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inquiry status")
			}
			inquiry.Status = enums.InquiryStatusQuoted
		}
		inquiry.Quotes = append([]models.Quote{*quote}, inquiry.Quotes...)
		updated = inquiry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Accept is the customer-facing transition from quoted to accepted. The
// active quote must not be expired.
func (s *service) Accept(ctx context.Context, id, userID uuid.UUID) (*models.Inquiry, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var updated *models.Inquiry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inquiry, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry")
		}
		if inquiry.UserID == nil || *inquiry.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		if !CanTransition(inquiry.Status, enums.InquiryStatusAccepted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot accept inquiry in status %s", inquiry.Status))
		}
		if len(inquiry.Quotes) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no quote to accept")
		}
		active := inquiry.Quotes[0]
		if active.ExpiresAt != nil && active.ExpiresAt.Before(time.Now()) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote has expired")
		}

		if err := repo.UpdateStatus(ctx, inquiry.ID, enums.InquiryStatusAccepted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inquiry status")
		}
		inquiry.Status = enums.InquiryStatusAccepted
		updated = inquiry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Inquiry, error) {
	if input.InquiryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid inquiry status %q", input.Target))
	}

	var updated *models.Inquiry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inquiry, err := repo.FindByID(ctx, input.InquiryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry")
		}
		if inquiry.Status == input.Target {
			updated = inquiry
			return nil
		}
		if !CanTransition(inquiry.Status, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move inquiry from %s to %s", inquiry.Status, input.Target))
		}
		if err := repo.UpdateStatus(ctx, inquiry.ID, input.Target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inquiry status")
		}
		inquiry.Status = input.Target
		updated = inquiry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an inquiry and its attachments. Only terminal inquiries
// can be deleted; live ones must be closed or rejected first.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	inquiry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !inquiry.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only closed inquiries can be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inquiry")
	}
	return nil
}
