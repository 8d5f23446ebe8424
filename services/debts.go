package services

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Balance is a player's standing: positive means the group owes them.
type Balance struct {
	PlayerID string
	Name     string
	Amount   decimal.Decimal
}

// Transfer is one suggested payment.
type Transfer struct {
	FromPlayerID string          `json:"from_player_id"`
	FromName     string          `json:"from_name"`
	ToPlayerID   string          `json:"to_player_id"`
	ToName       string          `json:"to_name"`
	Amount       decimal.Decimal `json:"amount"`
}

var cent = decimal.New(1, -2)

// SuggestSettlements pairs the largest debtor with the largest creditor
// until every balance is cleared to the cent. It yields at most n-1
// transfers for n non-zero balances.
func SuggestSettlements(balances []Balance) []Transfer {
	var debtors, creditors []Balance
	for _, b := range balances {
		amt := b.Amount.Round(2)
		switch {
		case amt.IsNegative():
			debtors = append(debtors, Balance{PlayerID: b.PlayerID, Name: b.Name, Amount: amt.Neg()})
		case amt.IsPositive():
			creditors = append(creditors, Balance{PlayerID: b.PlayerID, Name: b.Name, Amount: amt})
		}
	}

	byAmountDesc := func(s []Balance) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Amount.GreaterThan(s[j].Amount) })
	}
	byAmountDesc(debtors)
	byAmountDesc(creditors)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		amt := decimal.Min(d.Amount, c.Amount)
		if amt.GreaterThanOrEqual(cent) {
			transfers = append(transfers, Transfer{
				FromPlayerID: d.PlayerID,
				FromName:     d.Name,
				ToPlayerID:   c.PlayerID,
				ToName:       c.Name,
				Amount:       amt,
			})
		}
		d.Amount = d.Amount.Sub(amt)
		c.Amount = c.Amount.Sub(amt)
		if d.Amount.LessThan(cent) {
			i++
		}
		if c.Amount.LessThan(cent) {
			j++
		}
	}
	return transfers
}
