package contract

import (
	"strings"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
)

// NonEmpty fails when the trimmed string is empty.
func NonEmpty(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return &model.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

// PositiveInt fails when value <= 0.
func PositiveInt(value int, field string) error {
	if value <= 0 {
		return &model.ValidationError{Field: field, Reason: "must be positive"}
	}
	return nil
}

// NonNegativeInt fails when value < 0. Used for affected quantities, which
// may legitimately be zero.
func NonNegativeInt(value int, field string) error {
	if value < 0 {
		return &model.ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// NonNegativeFloat fails when value < 0.
func NonNegativeFloat(value float64, field string) error {
	if value < 0 {
		return &model.ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}
