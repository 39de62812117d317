package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are KES with two decimal places. DefaultMinAmount is the smallest
// deposit or withdrawal the fund accepts; config may raise it.
var DefaultMinAmount = decimal.NewFromInt(50)

// RoundKES rounds to the currency's minor unit (cents, half up).
func RoundKES(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateAmount checks a customer-supplied transaction amount.
func ValidateAmount(amount, min decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Validationf("amount must be positive")
	}
	if amount.LessThan(min) {
		return Validationf("minimum amount is KES %s", min.StringFixed(0))
	}
	return nil
}

// NormalizePhone converts a Kenyan mobile number to +254 form. Accepts
// numbers starting with +254 or a local 0 prefix.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(phone, "+254"):
		// already normalized
	case strings.HasPrefix(phone, "0"):
		phone = "+254" + phone[1:]
	default:
		return "", Validationf("invalid phone format, use +254 or 0 prefix")
	}
	if len(phone) != 13 {
		return "", Validationf("invalid phone number length")
	}
	for _, c := range phone[1:] {
		if c < '0' || c > '9' {
			return "", Validationf("phone number must contain only digits")
		}
	}
	return phone, nil
}

// ValidPIN checks the 4-digit numeric PIN format.
func ValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
