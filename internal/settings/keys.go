package settings

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// Store-level configuration keys. Every key has a typed schema; writes that
// do not parse against the schema are rejected.
const (
	KeyServiceFeeRate        = "service_fee_rate"
	KeyTaxRate               = "tax_rate"
	KeyDeliveryFeeAmount     = "delivery_fee_amount"
	KeyFreeDeliveryThreshold = "free_delivery_threshold"
	KeyDeliveryPostalCodes   = "delivery_postal_codes"
	KeyMaxAdvanceDays        = "max_advance_days"
)

// Defaults applied when a key has no row yet.
var defaults = map[string]string{
	KeyServiceFeeRate:        "0.05",
	KeyTaxRate:               "0.00",
	KeyDeliveryFeeAmount:     "8.00",
	KeyFreeDeliveryThreshold: "50.00",
	KeyDeliveryPostalCodes:   "[]",
	KeyMaxAdvanceDays:        "14",
}

var postalCodeRe = regexp.MustCompile(`^[0-9]{5}$`)

type validator func(value string) error

var schema = map[string]validator{
	KeyServiceFeeRate:        validateRate,
	KeyTaxRate:               validateRate,
	KeyDeliveryFeeAmount:     validateAmount,
	KeyFreeDeliveryThreshold: validateAmount,
	KeyDeliveryPostalCodes:   validatePostalCodes,
	KeyMaxAdvanceDays:        validateDays,
}

// KnownKey reports whether the key has a registered schema.
func KnownKey(key string) bool {
	_, ok := schema[key]
	return ok
}

// Validate checks a raw value against the key's schema.
func Validate(key, value string) error {
	fn, ok := schema[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	return fn(value)
}

func validateRate(value string) error {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("rate must be a decimal: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate must be between 0 and 1")
	}
	return nil
}

func validateAmount(value string) error {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("amount must be a decimal: %w", err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}

func validatePostalCodes(value string) error {
	var codes []string
	if err := json.Unmarshal([]byte(value), &codes); err != nil {
		return fmt.Errorf("postal codes must be a JSON string array: %w", err)
	}
	for _, code := range codes {
		if !postalCodeRe.MatchString(code) {
			return fmt.Errorf("invalid postal code %q", code)
		}
	}
	return nil
}

func validateDays(value string) error {
	days, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("days must be an integer: %w", err)
	}
	if days < 1 || days > 90 {
		return fmt.Errorf("days must be between 1 and 90")
	}
	return nil
}
