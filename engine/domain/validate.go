package domain

import (
	"fmt"
	"strings"
)

// ValidateQuery validates advisor query text. Validation runs before any
// catalog call; an empty or whitespace-only query short-circuits with
// ErrEmptyQuery.
func ValidateQuery(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("query", text, ErrEmptyQuery)
	}
	return nil
}

// ValidateVehicle validates a vehicle before it is written to the catalog.
func ValidateVehicle(v Vehicle) error {
	if strings.TrimSpace(v.Name) == "" {
		return NewValidationError("name", v.Name, ErrInvalidVehicle)
	}
	if strings.TrimSpace(v.Brand) == "" {
		return NewValidationError("brand", v.Brand, ErrInvalidVehicle)
	}
	if !ValidVehicleTypes[v.Type] {
		return NewValidationError("type", string(v.Type), ErrInvalidType)
	}
	if v.Price <= 0 {
		return NewValidationError("price", fmt.Sprintf("%g", v.Price), ErrInvalidPrice)
	}
	return nil
}
