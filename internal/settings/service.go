package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

// Service exposes typed reads over the settings table plus admin writes.
type Service interface {
	ServiceFeeRate(ctx context.Context) (decimal.Decimal, error)
	TaxRate(ctx context.Context) (decimal.Decimal, error)
	DeliveryFeeAmount(ctx context.Context) (decimal.Decimal, error)
	FreeDeliveryThreshold(ctx context.Context) (decimal.Decimal, error)
	DeliveryPostalCodes(ctx context.Context) ([]string, error)
	MaxAdvanceDays(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.Setting, error)
	Update(ctx context.Context, key, value string) error
}

type service struct {
	repo Repository
}

// NewService builds a settings service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) raw(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if fallback, ok := defaults[key]; ok {
				return fallback, nil
			}
			return "", pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("setting %q not found", key))
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}
	return setting.Value, nil
}

func (s *service) ServiceFeeRate(ctx context.Context) (decimal.Decimal, error) {
	value, err := s.raw(ctx, KeyServiceFeeRate)
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse service fee rate")
	}
	return rate, nil
}

func (s *service) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	value, err := s.raw(ctx, KeyTaxRate)
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse tax rate")
	}
	return rate, nil
}

func (s *service) DeliveryFeeAmount(ctx context.Context) (decimal.Decimal, error) {
	value, err := s.raw(ctx, KeyDeliveryFeeAmount)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse delivery fee")
	}
	return amount, nil
}

func (s *service) FreeDeliveryThreshold(ctx context.Context) (decimal.Decimal, error) {
	value, err := s.raw(ctx, KeyFreeDeliveryThreshold)
	if err != nil {
		return decimal.Zero, err
	}
	threshold, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse free delivery threshold")
	}
	return threshold, nil
}

func (s *service) DeliveryPostalCodes(ctx context.Context) ([]string, error) {
	value, err := s.raw(ctx, KeyDeliveryPostalCodes)
	if err != nil {
		return nil, err
	}
	var codes []string
	if err := json.Unmarshal([]byte(value), &codes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse delivery postal codes")
	}
	return codes, nil
}

func (s *service) MaxAdvanceDays(ctx context.Context) (int, error) {
	value, err := s.raw(ctx, KeyMaxAdvanceDays)
	if err != nil {
		return 0, err
	}
	days, err := strconv.Atoi(value)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse max advance days")
	}
	return days, nil
}

func (s *service) List(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}

	present := map[string]struct{}{}
	for _, setting := range settings {
		present[setting.Key] = struct{}{}
	}
	for key, value := range defaults {
		if _, ok := present[key]; !ok {
			settings = append(settings, models.Setting{Key: key, Value: value})
		}
	}
	return settings, nil
}

func (s *service) Update(ctx context.Context, key, value string) error {
	if !KnownKey(key) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown setting %q", key))
	}
	if err := Validate(key, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid setting value")
	}
	if err := s.repo.Upsert(ctx, &models.Setting{Key: key, Value: value}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
	}
	return nil
}
