// Package units converts between the two quantity units the trade uses:
// kilograms at the counter and 30kg bags in the books. All persisted stock
// levels are fractional bags; user-facing quantities are kilograms.
package units

import "math"

// KgPerBag is the fixed bag size. Every conversion must go through it.
const KgPerBag = 30.0

// KgToBags converts kilograms to fractional bags.
func KgToBags(kg float64) float64 {
	return kg / KgPerBag
}

// BagsToKg converts fractional bags back to kilograms.
func BagsToKg(bags float64) float64 {
	return bags * KgPerBag
}

// RoundKg rounds a kilogram quantity for display. Persisted quantities stay
// full precision so rounding error does not compound across transactions.
func RoundKg(kg float64) float64 {
	return math.Round(kg)
}
