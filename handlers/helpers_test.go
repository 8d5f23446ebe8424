package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"poker-ledger/database"
	"poker-ledger/models"
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testGatewayToken = "gateway-secret"

type fakeOCR struct {
	text string
	err  error
	got  []byte
}

func (f *fakeOCR) ExtractText(_ context.Context, image []byte, _ string) (string, error) {
	f.got = image
	return f.text, f.err
}

type memoryStore struct {
	saved map[string][]byte
}

func (m *memoryStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.saved[key] = data
	return "https://cdn.test/" + key, nil
}

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *services.TokenService
	ocr    *fakeOCR
	images *memoryStore
}

// newTestEnv wires the full route table over an in-memory database. A nil
// ocr leaves /bulk-game/ocr unconfigured.
func newTestEnv(t *testing.T, ocr *fakeOCR) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		app:    fiber.New(),
		db:     db,
		tokens: services.NewTokenService("test-secret", time.Hour),
		ocr:    ocr,
		images: &memoryStore{saved: map[string][]byte{}},
	}

	var extractor services.TextExtractor
	if ocr != nil {
		extractor = ocr
	}

	requireUser := NewRequireUser(env.tokens, testGatewayToken)
	auth := services.NewAuthService(db, env.tokens)
	auth.Cost = bcrypt.MinCost

	SetupAuthRoutes(env.app, auth, requireUser)
	SetupPlayerRoutes(env.app, services.NewPlayerService(db), requireUser)
	games := services.NewGameService(db)
	games.StreamInterval = 50 * time.Millisecond
	SetupGameRoutes(env.app, games, env.tokens, requireUser)
	SetupSettlementRoutes(env.app, services.NewSettlementService(db), requireUser)
	SetupStatsRoutes(env.app, services.NewStatsService(db), requireUser)
	SetupBulkGameRoutes(env.app, services.NewBulkGameService(db, extractor, env.images), requireUser)

	return env
}

// call sends a JSON request and returns the status and raw body.
func (e *testEnv) call(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

// register creates a user and returns their session token.
func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()

	status, raw := e.call(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"username": username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	var out struct {
		Token string `json:"token"`
	}
	decode(t, raw, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (e *testEnv) createPlayer(t *testing.T, token, name string) models.Player {
	t.Helper()

	status, raw := e.call(t, http.MethodPost, "/players", token, fiber.Map{"name": name})
	require.Equal(t, http.StatusCreated, status, string(raw))

	var p models.Player
	decode(t, raw, &p)
	return p
}

func (e *testEnv) getPlayer(t *testing.T, token, id string) models.Player {
	t.Helper()

	status, raw := e.call(t, http.MethodGet, "/players/"+id, token, nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	var p models.Player
	decode(t, raw, &p)
	return p
}
