package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"poker-ledger/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamGamesSSE pushes newly recorded games for the authenticated user.
func (s *GameService) StreamGamesSSE(c *fiber.Ctx) error {
	userID := currentUserID(c)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		interval := s.StreamInterval
		if interval <= 0 {
			interval = 2 * time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var cursor time.Time

		var latest models.Game
		if err := s.DB.
			Where("user_id = ?", userID).
			Order("created_at DESC").
			First(&latest).Error; err == nil {
			cursor = latest.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("📡 [SSE] init error for user %s: %v", userID, err)
		}

		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var games []models.Game
				err := s.DB.Preload("Players.Player").
					Where("user_id = ? AND created_at > ?", userID, cursor).
					Order("created_at ASC").
					Find(&games).Error
				if err != nil {
					log.Printf("📡 [SSE] query error for user %s: %v", userID, err)
					continue
				}

				if len(games) == 0 {
					// keepalive; a failed flush means the client is gone
					w.WriteString(":\n\n")
					if err := w.Flush(); err != nil {
						return
					}
					continue
				}

				cursor = games[len(games)-1].CreatedAt
				for _, g := range games {
					payload, err := json.Marshal(g)
					if err != nil {
						log.Printf("📡 [SSE] failed to encode game %s: %v", g.ID, err)
						continue
					}
					fmt.Fprintf(w, "event: game\ndata: %s\n\n", payload)
				}
				if err := w.Flush(); err != nil {
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
