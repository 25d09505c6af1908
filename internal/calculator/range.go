package calculator

import "math"

// RemainingDays returns how many days remain until a T+N subscription becomes
// sellable when today is the given day of the cycle (day 1 = subscription day).
func RemainingDays(settleDays, currentDay int) int {
	remaining := settleDays - (currentDay - 1)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CompoundRange applies consecutive limit-down and limit-up moves of the given
// ratio to price for days days and returns the two terminal prices.
// For limit in (0, 1) low never reaches zero and low <= price <= high.
func CompoundRange(price, limit float64, days int) (low, high float64) {
	if days <= 0 {
		return price, price
	}
	n := float64(days)
	return price * math.Pow(1-limit, n), price * math.Pow(1+limit, n)
}
