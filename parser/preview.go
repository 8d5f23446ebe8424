package parser

import "github.com/shopspring/decimal"

// BuyinCashout is the non-negative pair derived from a net profit.
type BuyinCashout struct {
	Buyin   decimal.Decimal `json:"buyin"`
	Cashout decimal.Decimal `json:"cashout"`
}

// ConvertProfitToBuyinCashout maps a win to a cash-out and a loss to a
// buy-in. Only the net survives; the real amounts are not recoverable.
func ConvertProfitToBuyinCashout(profit decimal.Decimal) BuyinCashout {
	if profit.IsNegative() {
		return BuyinCashout{Buyin: profit.Neg(), Cashout: decimal.Zero}
	}
	return BuyinCashout{Buyin: decimal.Zero, Cashout: profit}
}

// PreviewPlayer is one converted entry.
type PreviewPlayer struct {
	Name    string          `json:"name"`
	Profit  decimal.Decimal `json:"profit"`
	Buyin   decimal.Decimal `json:"buyin"`
	Cashout decimal.Decimal `json:"cashout"`
}

// Preview summarises what a game created from the entries would hold.
type Preview struct {
	Players       []PreviewPlayer `json:"players"`
	TotalBuyins   decimal.Decimal `json:"totalBuyins"`
	TotalCashouts decimal.Decimal `json:"totalCashouts"`
	Discrepancy   decimal.Decimal `json:"discrepancy"`
	PlayerCount   int             `json:"playerCount"`
}

// GeneratePreview converts every entry and totals the result. Entries with
// an invalid profit count as zero.
func GeneratePreview(entries []ParsedEntry) Preview {
	p := Preview{
		Players:       make([]PreviewPlayer, 0, len(entries)),
		TotalBuyins:   decimal.Zero,
		TotalCashouts: decimal.Zero,
	}

	for _, e := range entries {
		profit := e.Profit.Decimal
		bc := ConvertProfitToBuyinCashout(profit)
		p.Players = append(p.Players, PreviewPlayer{
			Name:    e.Name,
			Profit:  profit,
			Buyin:   bc.Buyin,
			Cashout: bc.Cashout,
		})
		p.TotalBuyins = p.TotalBuyins.Add(bc.Buyin)
		p.TotalCashouts = p.TotalCashouts.Add(bc.Cashout)
	}

	p.Discrepancy = p.TotalCashouts.Sub(p.TotalBuyins)
	p.PlayerCount = len(entries)
	return p
}
