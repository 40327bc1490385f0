package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
)

// Monetary amounts are carried as strings at the API boundary and as int64
// minor units (kobo) internally. No floating point anywhere in the money path.

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// ValidateAndConvertAmount validates a string amount and converts it to kobo.
// Uses a string-based approach to handle decimal places:
// - If no decimal point: appends "00" to get the kobo value
// - If one digit after decimal: appends a "0"
// - If two digits after decimal: just removes the point
// Returns the amount in kobo and an error if validation fails.
func ValidateAndConvertAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}
	// ParseInt would accept "+5" and the sign would leak into stored strings
	if strings.HasPrefix(amount, "+") {
		return 0, fmt.Errorf("%w: sign prefix not allowed", errs.ErrInvalidAmount)
	}

	parts := strings.Split(amount, ".")

	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	var integerValue string

	if len(parts) == 1 {
		integerValue = parts[0] + "00"
	} else {
		switch len(parts[1]) {
		case 0:
			// Like "10."
			integerValue = parts[0] + "00"
		case 1:
			integerValue = parts[0] + parts[1] + "0"
		case 2:
			integerValue = parts[0] + parts[1]
		default:
			return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
		}
	}

	value, err := strconv.ParseInt(integerValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	return value, nil
}

// ValidatePositiveAmount is like ValidateAndConvertAmount but additionally
// rejects zero. Payment amounts must always be strictly positive.
func ValidatePositiveAmount(amount string) (int64, error) {
	kobo, err := ValidateAndConvertAmount(amount)
	if err != nil {
		return 0, err
	}
	if kobo == 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", errs.ErrInvalidAmount)
	}
	return kobo, nil
}

// KoboToString converts an integer kobo amount to a decimal string.
// For example:
// - 1015 becomes "10.15"
// - 1000 becomes "10.00"
func KoboToString(kobo int64) string {
	isNegative := kobo < 0
	if isNegative {
		kobo = -kobo
	}

	amountStr := strconv.FormatInt(kobo, 10)

	for len(amountStr) < 3 {
		amountStr = "0" + amountStr
	}

	decimalPos := len(amountStr) - 2
	wholePart := amountStr[:decimalPos]
	decimalPart := amountStr[decimalPos:]

	if wholePart == "" {
		wholePart = "0"
	}

	if isNegative {
		return "-" + wholePart + "." + decimalPart
	}
	return wholePart + "." + decimalPart
}

// EnsureTwoDecimalPlaces standardizes a money string to exactly 2 decimal places.
// Example: "10.1" becomes "10.10", "10" becomes "10.00", "10.156" becomes "10.15" (truncated)
func EnsureTwoDecimalPlaces(amount string) string {
	if len(strings.TrimSpace(amount)) == 0 {
		return "0.00"
	}

	// Manual handling to avoid floating-point precision issues
	parts := strings.Split(amount, ".")

	if len(parts) == 1 {
		return parts[0] + ".00"
	}

	wholePart := parts[0]
	decimalPart := parts[1]

	switch len(decimalPart) {
	case 0:
		return wholePart + ".00"
	case 1:
		return wholePart + "." + decimalPart + "0"
	case 2:
		return wholePart + "." + decimalPart
	default:
		// Truncation, not rounding: preserves the stored value exactly
		return wholePart + "." + decimalPart[:2]
	}
}

// SuccessRate computes successful/total*100 guarding against division by zero.
func SuccessRate(successful, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}
