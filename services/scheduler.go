// services/scheduler.go
package services

import (
	"log"
	"time"

	"poker-ledger/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reconciler periodically rebuilds derived totals from the raw rows.
type Reconciler struct {
	DB *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{DB: db}
}

// ReconcileReport counts rows that had drifted and were rewritten.
type ReconcileReport struct {
	PlayersFixed int
	GamesFixed   int
}

// Start schedules Run every interval. The caller shuts the scheduler down.
func (r *Reconciler) Start(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			rep, err := r.Run()
			if err != nil {
				log.Printf("[Reconciler] failed: %v", err)
				return
			}
			if rep.PlayersFixed > 0 || rep.GamesFixed > 0 {
				log.Printf("🔧 [Reconciler] fixed %d players and %d games", rep.PlayersFixed, rep.GamesFixed)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("⏱️ [Reconciler] running every %s", interval)
	return sched, nil
}

// Run recomputes every game's totals and every player's aggregates in one
// transaction and rewrites only the rows that differ.
func (r *Reconciler) Run() (ReconcileReport, error) {
	var rep ReconcileReport

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var games []models.Game
		if err := tx.Preload("Players").Find(&games).Error; err != nil {
			return err
		}
		for i := range games {
			g := &games[i]
			drifted := false
			oldProfits := make([]decimal.Decimal, len(g.Players))
			for j, gp := range g.Players {
				oldProfits[j] = gp.Profit
			}
			before := *g
			g.Recalculate()
			for j, gp := range g.Players {
				if !gp.Profit.Equal(oldProfits[j]) {
					drifted = true
				}
			}
			if !drifted &&
				before.TotalBuyins.Equal(g.TotalBuyins) &&
				before.TotalCashouts.Equal(g.TotalCashouts) &&
				before.Discrepancy.Equal(g.Discrepancy) {
				continue
			}
			log.Printf("[Reconciler] game %s drifted", g.ID)
			if err := tx.Model(&models.Game{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
				"total_buyins":   g.TotalBuyins,
				"total_cashouts": g.TotalCashouts,
				"discrepancy":    g.Discrepancy,
			}).Error; err != nil {
				return err
			}
			for _, gp := range g.Players {
				if err := tx.Model(&models.GamePlayer{}).Where("id = ?", gp.ID).Update("profit", gp.Profit).Error; err != nil {
					return err
				}
			}
			rep.GamesFixed++
		}

		var players []models.Player
		if err := tx.Find(&players).Error; err != nil {
			return err
		}
		ids := make([]string, len(players))
		for i, p := range players {
			ids[i] = p.ID
		}
		var rows []models.GamePlayer
		if err := tx.Find(&rows).Error; err != nil {
			return err
		}
		var settlements []models.Settlement
		if err := tx.Find(&settlements).Error; err != nil {
			return err
		}

		totals := AggregateTotals(ids, rows, settlements)
		for _, p := range players {
			t := totals[p.ID]
			if t.equal(p) {
				continue
			}
			log.Printf("[Reconciler] player %s (%s) drifted: net %s -> %s",
				p.Name, p.ID, p.NetProfit.StringFixed(2), t.NetProfit.StringFixed(2))
			if err := writeTotals(tx, p.ID, t); err != nil {
				return err
			}
			rep.PlayersFixed++
		}
		return nil
	})
	return rep, err
}
