package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bal(id string, amount string) Balance {
	return Balance{PlayerID: id, Name: id, Amount: decimal.RequireFromString(amount)}
}

func TestSuggestSettlementsSimple(t *testing.T) {
	got := SuggestSettlements([]Balance{bal("alice", "50"), bal("bob", "-50")})

	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].FromPlayerID)
	assert.Equal(t, "alice", got[0].ToPlayerID)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(50)))
}

func TestSuggestSettlementsClearsEveryBalance(t *testing.T) {
	balances := []Balance{
		bal("a", "70"),
		bal("b", "-20.50"),
		bal("c", "-30"),
		bal("d", "15.25"),
		bal("e", "-34.75"),
		bal("f", "0"),
	}

	got := SuggestSettlements(balances)
	assert.LessOrEqual(t, len(got), 4, "at most n-1 transfers for 5 non-zero balances")

	remaining := map[string]decimal.Decimal{}
	for _, b := range balances {
		remaining[b.PlayerID] = b.Amount
	}
	for _, tr := range got {
		assert.True(t, tr.Amount.IsPositive())
		remaining[tr.FromPlayerID] = remaining[tr.FromPlayerID].Add(tr.Amount)
		remaining[tr.ToPlayerID] = remaining[tr.ToPlayerID].Sub(tr.Amount)
	}
	for id, r := range remaining {
		assert.True(t, r.IsZero(), "%s left with %s", id, r)
	}
}

func TestSuggestSettlementsLargestFirst(t *testing.T) {
	got := SuggestSettlements([]Balance{
		bal("small", "-10"),
		bal("big", "-40"),
		bal("winner", "50"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "big", got[0].FromPlayerID)
	assert.Equal(t, "small", got[1].FromPlayerID)
}

func TestSuggestSettlementsIgnoresDust(t *testing.T) {
	assert.Empty(t, SuggestSettlements([]Balance{bal("a", "0.004"), bal("b", "-0.004")}))
	assert.Empty(t, SuggestSettlements(nil))
}
