// Package booking – payment split.
package booking

import (
	"strconv"

	"github.com/mezoapp/salon-core/internal/domain"
)

// Split is the division of a total between the user's wallet and the
// online gateway. WalletPaid + OnlinePaid always equals the total and
// neither part is negative.
type Split struct {
	WalletPaid float64
	OnlinePaid float64
}

// SplitPayment divides total according to the selected payment method.
// Online puts the entire amount on the gateway; wallet spends as much
// balance as is available and charges the remainder online.
func SplitPayment(total, walletBalance float64, method string) Split {
	if total < 0 {
		total = 0
	}
	if method != domain.PaymentMethodWallet {
		return Split{WalletPaid: 0, OnlinePaid: total}
	}
	wallet := walletBalance
	if wallet < 0 {
		wallet = 0
	}
	if wallet > total {
		wallet = total
	}
	return Split{WalletPaid: wallet, OnlinePaid: total - wallet}
}

// StatusLabel renders the user-visible order status for a split. The
// three cases produce distinct labels; the mixed case names both
// amounts so the user can reconcile their wallet statement.
func (s Split) StatusLabel() string {
	switch {
	case s.WalletPaid == 0:
		return "Paid online"
	case s.OnlinePaid == 0:
		return "Paid from wallet"
	default:
		return "Paid " + formatAmount(s.WalletPaid) + " from wallet + " +
			formatAmount(s.OnlinePaid) + " online"
	}
}

// formatAmount renders an amount with the three fractional digits KWD
// uses.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + " KWD"
}
