package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAnalyzeUsesFreshRoster(t *testing.T) {
	db := openTestDB(t)
	svc := NewBulkGameService(db, nil, nil)

	res, err := svc.Analyze("u1", "Robbie: +5\nCarl: -5", "2024-02-02")
	require.NoError(t, err)
	assert.Empty(t, res.Matching.Matched)
	assert.Len(t, res.Matching.Unmatched, 2)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := CreatePlayer(tx, "u1", "Robert")
		return err
	}))

	res, err = svc.Analyze("u1", "Robbie: +5\nCarl: -5", "2024-02-02")
	require.NoError(t, err)
	require.Len(t, res.Matching.Unmatched, 2, "Robbie vs Robert is only a suggestion")
	require.NotEmpty(t, res.Matching.Unmatched[0].Suggestions)
	assert.Equal(t, "Robert", res.Matching.Unmatched[0].Suggestions[0].Name)

	// another user's roster is invisible
	res, err = svc.Analyze("u2", "Robert: +5", "")
	require.NoError(t, err)
	assert.Empty(t, res.Matching.Matched)

	_, err = svc.Analyze("u1", "Robert: +5", "yesterday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolvePlayers(t *testing.T) {
	db := openTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		existing, err := CreatePlayer(tx, "u1", "Dana")
		require.NoError(t, err)

		in := []bulkPlayerInput{
			{Name: "dana", Profit: json.RawMessage("5")},
			{Name: "Eve", Profit: json.RawMessage(`"-5"`)},
		}

		_, _, err = resolvePlayers(tx, "u1", in, false)
		assert.ErrorIs(t, err, ErrValidation)

		ids, created, err := resolvePlayers(tx, "u1", in, true)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, ids[0])
		assert.NotEmpty(t, ids[1])
		assert.Equal(t, []string{"Eve"}, created)

		_, _, err = resolvePlayers(tx, "u1", []bulkPlayerInput{{Name: "X", PlayerID: "nope"}}, true)
		assert.ErrorIs(t, err, ErrPlayerNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestBulkPlayerProfit(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
		want  string
	}{
		{"25.5", true, "25.5"},
		{`"-10"`, true, "-10"},
		{"", false, ""},
		{"null", false, ""},
		{`"abc"`, false, ""},
		{"true", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := bulkPlayerInput{Profit: json.RawMessage(tt.raw)}.profit()
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tt.want)), "got %s", got.Decimal)
			}
		})
	}
}
