package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"poker-ledger/models"
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkParse(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dealer")
	john := env.createPlayer(t, token, "John")

	status, raw := env.call(t, http.MethodPost, "/bulk-game/parse", token, fiber.Map{
		"text": "Jon: +20\nnot a result line\nBobby -20",
		"date": "2024-05-04",
	})
	require.Equal(t, http.StatusOK, status, string(raw))

	var res services.BulkParseResponse
	decode(t, raw, &res)
	assert.True(t, res.Success)
	assert.Equal(t, "2024-05-04", res.Preview.GameDate)
	assert.Equal(t, 2, res.Preview.PlayerCount)
	assertDecimal(t, "20", res.Preview.TotalBuyins, "preview buyins")
	assertDecimal(t, "0", res.Preview.Discrepancy, "preview discrepancy")

	require.Len(t, res.Matching.Matched, 1)
	assert.Equal(t, "Jon", res.Matching.Matched[0].ParsedName)
	assert.Equal(t, john.ID, res.Matching.Matched[0].ExistingPlayerID)
	assert.InDelta(t, 0.75, res.Matching.Matched[0].Similarity, 1e-9)

	require.Len(t, res.Matching.Unmatched, 1)
	assert.Equal(t, "Bobby", res.Matching.Unmatched[0].ParsedName)

	assert.True(t, res.Validation.IsValid)
	assert.Empty(t, res.Validation.Warnings)

	// camelCase contract
	assert.Contains(t, string(raw), `"totalBuyins"`)
	assert.Contains(t, string(raw), `"existingPlayerId"`)
}

func TestBulkParseWarnsOnImbalance(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dealer")

	status, raw := env.call(t, http.MethodPost, "/bulk-game/parse", token, fiber.Map{"text": "Alice: +30\nBob: -20"})
	require.Equal(t, http.StatusOK, status, string(raw))

	var res services.BulkParseResponse
	decode(t, raw, &res)
	assertDecimal(t, "10", res.Preview.Discrepancy, "discrepancy")
	assert.True(t, res.Validation.IsValid)
	assert.Len(t, res.Validation.Warnings, 1)

	status, _ = env.call(t, http.MethodPost, "/bulk-game/parse", token, fiber.Map{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
}

type bulkCreateResult struct {
	Success bool                 `json:"success"`
	Game    models.Game          `json:"game"`
	Summary services.BulkSummary `json:"summary"`
}

func TestBulkCreate(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dealer")
	john := env.createPlayer(t, token, "John")

	body := fiber.Map{
		"date": "2024-05-04",
		"players": []fiber.Map{
			{"name": "Jon", "profit": 25, "playerId": john.ID},
			{"name": "alice", "profit": -15},
			{"name": "Bob", "profit": -10},
		},
	}

	status, raw := env.call(t, http.MethodPost, "/bulk-game/create", token, body)
	require.Equal(t, http.StatusBadRequest, status, string(raw))
	assert.Contains(t, string(raw), "alice")
	assert.Contains(t, string(raw), "Bob")

	body["createNewPlayers"] = true
	status, raw = env.call(t, http.MethodPost, "/bulk-game/create", token, body)
	require.Equal(t, http.StatusCreated, status, string(raw))

	var res bulkCreateResult
	decode(t, raw, &res)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Summary.PlayerCount)
	assertDecimal(t, "25", res.Summary.TotalBuyins, "buyins")
	assertDecimal(t, "25", res.Summary.TotalCashouts, "cashouts")
	assertDecimal(t, "0", res.Summary.Discrepancy, "discrepancy")
	assert.ElementsMatch(t, []string{"alice", "Bob"}, res.Summary.NewPlayers)
	require.Len(t, res.Game.Players, 3)

	j := env.getPlayer(t, token, john.ID)
	assertDecimal(t, "25", j.NetProfit, "john net")
	assertDecimal(t, "25", j.TotalCashouts, "john cashouts")
	assert.EqualValues(t, 1, j.GamesPlayed)

	// a second import resolves the now-known names case-insensitively
	status, raw = env.call(t, http.MethodPost, "/bulk-game/create", token, fiber.Map{
		"players": []fiber.Map{
			{"name": "ALICE", "profit": 5},
			{"name": "bob", "profit": -5},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	decode(t, raw, &res)
	assert.Empty(t, res.Summary.NewPlayers)

	status, raw = env.call(t, http.MethodGet, "/players", token, nil)
	require.Equal(t, http.StatusOK, status)
	var roster []models.Player
	decode(t, raw, &roster)
	assert.Len(t, roster, 3)
}

func TestBulkCreateRejects(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dealer")
	john := env.createPlayer(t, token, "John")

	cases := map[string]fiber.Map{
		"no players": {"players": []fiber.Map{}},
		"duplicate names": {"createNewPlayers": true, "players": []fiber.Map{
			{"name": "Sam", "profit": 5},
			{"name": "sam", "profit": -5},
		}},
		"missing profit": {"createNewPlayers": true, "players": []fiber.Map{
			{"name": "Sam"},
		}},
		"same player twice": {"players": []fiber.Map{
			{"name": "Jon", "profit": 5, "playerId": john.ID},
			{"name": "John", "profit": -5},
		}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, raw := env.call(t, http.MethodPost, "/bulk-game/create", token, body)
			assert.Equal(t, http.StatusBadRequest, status, string(raw))
			assert.Contains(t, string(raw), `"success":false`)
		})
	}

	// nothing was written
	var games, players int64
	require.NoError(t, env.db.Model(&models.Game{}).Count(&games).Error)
	require.NoError(t, env.db.Model(&models.Player{}).Count(&players).Error)
	assert.Zero(t, games)
	assert.EqualValues(t, 1, players)
}

func imageRequest(t *testing.T, token, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="results.PNG"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("date", "2024-06-01"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/bulk-game/ocr", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestBulkOCR(t *testing.T) {
	ocr := &fakeOCR{text: "Alice: +12.50\nBob: -12.50"}
	env := newTestEnv(t, ocr)
	token := env.register(t, "dealer")
	env.createPlayer(t, token, "Alice")

	status, raw := env.send(t, imageRequest(t, token, "image/png", []byte("fake-png")))
	require.Equal(t, http.StatusOK, status, string(raw))

	var res services.BulkParseResponse
	decode(t, raw, &res)
	assert.Equal(t, "fake-png", string(ocr.got))
	assert.Equal(t, ocr.text, res.Text)
	assert.Equal(t, "2024-06-01", res.Preview.GameDate)
	assert.Len(t, res.Matching.Matched, 1)
	assert.Len(t, res.Matching.Unmatched, 1)

	require.Len(t, env.images.saved, 1)
	assert.True(t, strings.HasPrefix(res.ImageURL, "https://cdn.test/screenshots/"))
	assert.True(t, strings.HasSuffix(res.ImageURL, ".png"))

	status, _ = env.send(t, imageRequest(t, token, "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, status)

	ocr.err = errors.New("upstream down")
	status, _ = env.send(t, imageRequest(t, token, "image/png", []byte("fake-png")))
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestBulkOCRUnconfigured(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dealer")

	status, raw := env.send(t, imageRequest(t, token, "image/png", []byte("fake-png")))
	assert.Equal(t, http.StatusServiceUnavailable, status, string(raw))
}

func TestBulkCreateReportsMalformedProfit(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dealer")

	status, raw := env.call(t, http.MethodPost, "/bulk-game/create", token, fiber.Map{
		"createNewPlayers": true,
		"players": []fiber.Map{
			{"name": "Sam", "profit": "abc"},
			{"name": "Kim", "profit": "-5"},
		},
	})
	require.Equal(t, http.StatusBadRequest, status, string(raw))

	var res struct {
		Success    bool `json:"success"`
		Validation struct {
			IsValid bool     `json:"isValid"`
			Errors  []string `json:"errors"`
		} `json:"validation"`
	}
	decode(t, raw, &res)
	assert.False(t, res.Success)
	assert.False(t, res.Validation.IsValid)
	require.Len(t, res.Validation.Errors, 1)
	assert.Contains(t, res.Validation.Errors[0], `invalid profit amount for "Sam"`)
}
