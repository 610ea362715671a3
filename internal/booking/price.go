// Package booking – pricing.
package booking

import (
	"strconv"
	"strings"

	"github.com/mezoapp/salon-core/internal/domain"
)

// defaultDurationMinutes is used when a service's free-text duration
// carries no number at all.
const defaultDurationMinutes = 60

// Breakdown is the itemised result of pricing a booking item.
type Breakdown struct {
	// Base is the unit price before addons. Under the custom-price
	// strategy it already equals Total.
	Base float64
	// AddonsTotal is the per-unit sum of selected addon prices.
	AddonsTotal float64
	// Total is the amount due for the whole item, quantity included.
	Total float64
}

// ComputePrice prices a single booking item under one of two strategies:
//
//   - CustomFinalPrice set: the price is already final per unit
//     (package-option flows arrive this way), so Total is simply that
//     value times the quantity and addons contribute nothing.
//   - Otherwise: the catalog price string plus the selected addons,
//     times the quantity.
//
// Price strings come from the backend in display form ("8.000 د.ك") and
// are parsed leniently; a malformed price contributes zero rather than
// failing the checkout.
func ComputePrice(item domain.BookingItem) Breakdown {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	if item.CustomFinalPrice != nil {
		total := *item.CustomFinalPrice * float64(qty)
		return Breakdown{Base: total, AddonsTotal: 0, Total: total}
	}

	base := ParsePrice(item.Product.Price)
	var addons float64
	for _, a := range item.SelectedAddons {
		addons += ParsePrice(a.Price)
	}
	return Breakdown{
		Base:        base,
		AddonsTotal: addons,
		Total:       (base + addons) * float64(qty),
	}
}

// ParsePrice extracts the numeric amount from a display price string by
// dropping every rune that is not a digit or a dot. Anything that still
// does not parse as a number yields 0.
func ParsePrice(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseDuration extracts the first integer from a free-text duration
// ("45 min", "1 hour 30") as a minute count, defaulting when the text
// carries no number.
func ParseDuration(s string) int {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return defaultDurationMinutes
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil || n <= 0 {
		return defaultDurationMinutes
	}
	return n
}
