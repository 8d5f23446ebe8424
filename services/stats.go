package services

import (
	"poker-ledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlayerTotals is the derived state of one player.
type PlayerTotals struct {
	NetProfit     decimal.Decimal
	TotalBuyins   decimal.Decimal
	TotalCashouts decimal.Decimal
	GamesPlayed   int64
}

func (t PlayerTotals) equal(p models.Player) bool {
	return t.NetProfit.Equal(p.NetProfit) &&
		t.TotalBuyins.Equal(p.TotalBuyins) &&
		t.TotalCashouts.Equal(p.TotalCashouts) &&
		t.GamesPlayed == p.GamesPlayed
}

// AggregateTotals folds game rows and settlements into per-player totals.
// Every id in ids gets an entry even when it has no rows. A settlement
// raises the payer's net profit and lowers the receiver's.
func AggregateTotals(ids []string, rows []models.GamePlayer, settlements []models.Settlement) map[string]PlayerTotals {
	totals := make(map[string]PlayerTotals, len(ids))
	for _, id := range ids {
		totals[id] = PlayerTotals{
			NetProfit:     decimal.Zero,
			TotalBuyins:   decimal.Zero,
			TotalCashouts: decimal.Zero,
		}
	}

	for _, r := range rows {
		t, ok := totals[r.PlayerID]
		if !ok {
			continue
		}
		t.TotalBuyins = t.TotalBuyins.Add(r.Buyin)
		t.TotalCashouts = t.TotalCashouts.Add(r.Cashout)
		t.NetProfit = t.NetProfit.Add(r.Cashout.Sub(r.Buyin))
		t.GamesPlayed++
		totals[r.PlayerID] = t
	}

	for _, s := range settlements {
		if t, ok := totals[s.FromPlayerID]; ok {
			t.NetProfit = t.NetProfit.Add(s.Amount)
			totals[s.FromPlayerID] = t
		}
		if t, ok := totals[s.ToPlayerID]; ok {
			t.NetProfit = t.NetProfit.Sub(s.Amount)
			totals[s.ToPlayerID] = t
		}
	}
	return totals
}

// RecalculatePlayerStats rewrites the aggregate columns of the given
// players from their game rows and settlements. Call it inside the
// transaction that changed those rows.
func RecalculatePlayerStats(tx *gorm.DB, playerIDs ...string) error {
	ids := uniqueStrings(playerIDs)
	if len(ids) == 0 {
		return nil
	}

	var rows []models.GamePlayer
	if err := tx.Where("player_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	var settlements []models.Settlement
	if err := tx.Where("from_player_id IN ? OR to_player_id IN ?", ids, ids).Find(&settlements).Error; err != nil {
		return err
	}

	for id, t := range AggregateTotals(ids, rows, settlements) {
		if err := writeTotals(tx, id, t); err != nil {
			return err
		}
	}
	return nil
}

func writeTotals(tx *gorm.DB, playerID string, t PlayerTotals) error {
	return tx.Model(&models.Player{}).Where("id = ?", playerID).Updates(map[string]interface{}{
		"net_profit":     t.NetProfit,
		"total_buyins":   t.TotalBuyins,
		"total_cashouts": t.TotalCashouts,
		"games_played":   t.GamesPlayed,
	}).Error
}
