package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/models"
)

// noiseFloor drops pair nets smaller than one cent.
var noiseFloor = decimal.New(1, -2) // 0.01

// Simplify nets a collection of directed obligations into the minimal
// transfer list a group needs to execute.
//
// Each unordered pair {A,B} is canonicalized by sorting the two IDs; amounts
// flowing low->high accumulate positively, high->low negatively, so mutual
// obligations collapse into one signed net regardless of insertion order.
// Pairs whose absolute net is below 0.01 are discarded. The surviving nets
// are emitted with from/to chosen by sign, sorted by (from, to) for
// deterministic output.
func Simplify(obligations []models.Obligation) []models.Transfer {
	type pair struct{ low, high string }

	nets := make(map[pair]decimal.Decimal)
	for _, o := range obligations {
		if o.From == o.To || !o.Amount.IsPositive() {
			continue
		}
		p := pair{low: o.From, high: o.To}
		amount := o.Amount
		if p.low > p.high {
			p.low, p.high = p.high, p.low
			amount = amount.Neg()
		}
		nets[p] = nets[p].Add(amount)
	}

	transfers := make([]models.Transfer, 0, len(nets))
	for p, net := range nets {
		if net.Abs().LessThan(noiseFloor) {
			continue
		}
		t := models.Transfer{From: p.low, To: p.high, Amount: net}
		if net.IsNegative() {
			t = models.Transfer{From: p.high, To: p.low, Amount: net.Neg()}
		}
		transfers = append(transfers, t)
	}

	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].From != transfers[j].From {
			return transfers[i].From < transfers[j].From
		}
		return transfers[i].To < transfers[j].To
	})
	return transfers
}
