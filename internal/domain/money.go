package domain

// All monetary values are stored as int64 minor units (e.g. kobo, cents).
// 1050 means 10.50 in a two-decimal currency. Floating point never touches
// money in this codebase.

// Commission returns the agent's share of amount at ratePercent, in minor
// units, rounded half to even. Inputs are expected to be non-negative; both
// are validated at the agreement and payment boundaries.
func Commission(amount, ratePercent int64) int64 {
	product := amount * ratePercent
	quotient := product / 100
	remainder := product % 100

	switch {
	case remainder*2 > 100:
		quotient++
	case remainder*2 == 100 && quotient%2 != 0:
		quotient++
	}
	return quotient
}
