package models

import "strings"

// Recognized measurement units for substitution quantities.
const (
	UnitTeaspoon   = "tsp"
	UnitTablespoon = "tbsp"
	UnitCup        = "cup"
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitOunce      = "oz"
	UnitPound      = "lb"
	UnitMilliliter = "ml"
	UnitLiter      = "l"
	UnitWhole      = "whole"
)

// DefaultUnit is used when a quantity arrives without a unit.
const DefaultUnit = UnitWhole

var recognizedUnits = map[string]struct{}{
	UnitTeaspoon:   {},
	UnitTablespoon: {},
	UnitCup:        {},
	UnitGram:       {},
	UnitKilogram:   {},
	UnitOunce:      {},
	UnitPound:      {},
	UnitMilliliter: {},
	UnitLiter:      {},
	UnitWhole:      {},
}

// ValidUnit reports whether the value names a recognized measurement unit.
func ValidUnit(value string) bool {
	_, ok := recognizedUnits[value]
	return ok
}

// NormalizeUnit lowercases and trims the value, returning DefaultUnit
// when the result is not a recognized unit.
func NormalizeUnit(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if ValidUnit(trimmed) {
		return trimmed
	}
	return DefaultUnit
}
