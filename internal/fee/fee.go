package fee

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

// DefaultRate is the platform fee rate applied to every settled pool.
var DefaultRate = decimal.RequireFromString("0.10")

// DefaultMinNetPayout is the smallest net payout a participant may be
// exposed to; wager creation is rejected below it.
var DefaultMinNetPayout = decimal.RequireFromString("0.50")

// Calculator computes platform fees and payout splits. It is pure: no state
// beyond its configuration, no I/O, safe to call repeatedly.
type Calculator struct {
	rate         decimal.Decimal
	minNetPayout decimal.Decimal
}

func NewCalculator(rate, minNetPayout decimal.Decimal) Calculator {
	return Calculator{rate: rate, minNetPayout: minNetPayout}
}

// Breakdown is the fee/net pair for a pooled amount. Fee + Net always equals
// the pool to the cent.
type Breakdown struct {
	Fee decimal.Decimal
	Net decimal.Decimal
}

// Quote returns the platform fee and the distributable net for a gross pool.
// Fee is rounded to the nearest cent, half away from zero; the same rule is
// used for every wager type so fee accounting stays consistent.
func (c Calculator) Quote(pool decimal.Decimal) Breakdown {
	fee := pool.Mul(c.rate).Round(2)
	return Breakdown{Fee: fee, Net: pool.Sub(fee)}
}

// Share is one winner's cut of a settled pool.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// Split divides net across winners in proportion to their stakes. Each share
// is truncated to the cent and the leftover cents are handed out one at a
// time by largest truncated fraction (ties by ascending user id), so the
// shares always sum exactly to net. A zero winning pool yields zero shares.
func (c Calculator) Split(net decimal.Decimal, winnerStakes []Share) []Share {
	out := make([]Share, len(winnerStakes))
	winPool := decimal.Zero
	for _, s := range winnerStakes {
		winPool = winPool.Add(s.Amount)
	}
	if winPool.IsZero() {
		for i, s := range winnerStakes {
			out[i] = Share{UserID: s.UserID, Amount: decimal.Zero}
		}
		return out
	}

	type slice struct {
		idx       int
		remainder decimal.Decimal
	}
	remainders := make([]slice, len(winnerStakes))
	distributed := decimal.Zero
	for i, s := range winnerStakes {
		raw := net.Mul(s.Amount).Div(winPool)
		floor := raw.RoundDown(2)
		out[i] = Share{UserID: s.UserID, Amount: floor}
		remainders[i] = slice{idx: i, remainder: raw.Sub(floor)}
		distributed = distributed.Add(floor)
	}

	cent := decimal.New(1, -2)
	leftover := net.Sub(distributed).Div(cent).IntPart()

	sort.SliceStable(remainders, func(a, b int) bool {
		cmp := remainders[a].remainder.Cmp(remainders[b].remainder)
		if cmp != 0 {
			return cmp > 0
		}
		return winnerStakes[remainders[a].idx].UserID < winnerStakes[remainders[b].idx].UserID
	})
	for i := int64(0); i < leftover && int(i) < len(remainders); i++ {
		j := remainders[i].idx
		out[j].Amount = out[j].Amount.Add(cent)
	}
	return out
}

// ValidateStake rejects stakes whose worst-case net payout falls under the
// configured minimum. Worst case is every participant winning and splitting
// the net evenly, which works out to the net of a single stake.
func (c Calculator) ValidateStake(stake decimal.Decimal) error {
	if !stake.IsPositive() {
		return domain.ErrInvalidStake
	}
	if c.Quote(stake).Net.LessThan(c.minNetPayout) {
		return domain.ErrStakeBelowMinimum
	}
	return nil
}
