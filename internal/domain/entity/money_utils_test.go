package entity

import (
	"errors"
	"testing"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
)

func TestValidateAndConvertAmount(t *testing.T) {
	testCases := []struct {
		name        string
		amount      string
		expected    int64
		expectError bool
		errorType   error
	}{
		{"WholeNumber", "10", 1000, false, nil},
		{"OneDecimalPlace", "10.5", 1050, false, nil},
		{"TwoDecimalPlaces", "10.15", 1015, false, nil},
		{"TrailingPoint", "10.", 1000, false, nil},
		{"Zero", "0", 0, false, nil},
		{"ZeroWithDecimals", "0.00", 0, false, nil},
		{"SmallFraction", "0.01", 1, false, nil},
		{"LargeAmount", "999999.99", 99999999, false, nil},
		{"WithWhitespace", " 25.00 ", 2500, false, nil},
		{"Empty", "", 0, true, errs.ErrInvalidAmount},
		{"Negative", "-10.00", 0, true, errs.ErrNegativeAmount},
		{"LeadingPlus", "+5", 0, true, errs.ErrInvalidAmount},
		{"LeadingPlusWithDecimals", "+10.00", 0, true, errs.ErrInvalidAmount},
		{"ThreeDecimalPlaces", "10.155", 0, true, errs.ErrInvalidAmount},
		{"TwoPoints", "10.1.5", 0, true, errs.ErrInvalidAmount},
		{"NotANumber", "abc", 0, true, errs.ErrInvalidAmount},
		{"NumberWithLetters", "10a.00", 0, true, errs.ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kobo, err := ValidateAndConvertAmount(tc.amount)
			if tc.expectError {
				if err == nil {
					t.Fatalf("ValidateAndConvertAmount(%q) expected error, got nil", tc.amount)
				}
				if tc.errorType != nil && !errors.Is(err, tc.errorType) {
					t.Errorf("ValidateAndConvertAmount(%q) error = %v, want %v", tc.amount, err, tc.errorType)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndConvertAmount(%q) unexpected error: %v", tc.amount, err)
			}
			if kobo != tc.expected {
				t.Errorf("ValidateAndConvertAmount(%q) = %d, want %d", tc.amount, kobo, tc.expected)
			}
		})
	}
}

func TestValidatePositiveAmount(t *testing.T) {
	if _, err := ValidatePositiveAmount("0.00"); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Errorf("ValidatePositiveAmount(0.00) error = %v, want ErrInvalidAmount", err)
	}

	kobo, err := ValidatePositiveAmount("0.01")
	if err != nil {
		t.Fatalf("ValidatePositiveAmount(0.01) unexpected error: %v", err)
	}
	if kobo != 1 {
		t.Errorf("ValidatePositiveAmount(0.01) = %d, want 1", kobo)
	}
}

func TestKoboToString(t *testing.T) {
	testCases := []struct {
		kobo     int64
		expected string
	}{
		{1015, "10.15"},
		{1000, "10.00"},
		{1, "0.01"},
		{99, "0.99"},
		{100, "1.00"},
		{0, "0.00"},
		{-1050, "-10.50"},
		{99999999, "999999.99"},
	}

	for _, tc := range testCases {
		if got := KoboToString(tc.kobo); got != tc.expected {
			t.Errorf("KoboToString(%d) = %s, want %s", tc.kobo, got, tc.expected)
		}
	}
}

func TestKoboRoundTrip(t *testing.T) {
	amounts := []string{"10.15", "0.01", "999999.99", "1.00"}
	for _, amount := range amounts {
		kobo, err := ValidateAndConvertAmount(amount)
		if err != nil {
			t.Fatalf("ValidateAndConvertAmount(%q) unexpected error: %v", amount, err)
		}
		if got := KoboToString(kobo); got != amount {
			t.Errorf("round trip of %q produced %q", amount, got)
		}
	}
}

func TestEnsureTwoDecimalPlaces(t *testing.T) {
	testCases := []struct {
		amount   string
		expected string
	}{
		{"10", "10.00"},
		{"10.1", "10.10"},
		{"10.15", "10.15"},
		{"10.156", "10.15"}, // truncated, not rounded
		{"10.", "10.00"},
		{"", "0.00"},
	}

	for _, tc := range testCases {
		if got := EnsureTwoDecimalPlaces(tc.amount); got != tc.expected {
			t.Errorf("EnsureTwoDecimalPlaces(%q) = %q, want %q", tc.amount, got, tc.expected)
		}
	}
}

func TestSuccessRate(t *testing.T) {
	if got := SuccessRate(0, 0); got != 0 {
		t.Errorf("SuccessRate(0, 0) = %f, want 0", got)
	}
	if got := SuccessRate(1, 4); got != 25 {
		t.Errorf("SuccessRate(1, 4) = %f, want 25", got)
	}
	if got := SuccessRate(3, 3); got != 100 {
		t.Errorf("SuccessRate(3, 3) = %f, want 100", got)
	}
}
