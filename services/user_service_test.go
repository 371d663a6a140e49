package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertLineProfile(t *testing.T) {
	pool := testPool(t)
	users := NewUserService(pool)
	ctx := context.Background()

	created, err := users.UpsertLineProfile(ctx, "U_line_1", "ดวงดี", "https://profile.line-scdn.net/a")
	require.NoError(t, err)
	assert.Equal(t, "U_line_1", created.LineUserID)
	assert.Equal(t, "ดวงดี", created.DisplayName)
	assert.Equal(t, 0, created.Credits)

	// Second login refreshes display data but keeps the same profile.
	again, err := users.UpsertLineProfile(ctx, "U_line_1", "ดวงดีมาก", "https://profile.line-scdn.net/b")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "ดวงดีมาก", again.DisplayName)
	assert.Equal(t, "https://profile.line-scdn.net/b", again.AvatarURL)
}

func TestGetProfileByIDNotFound(t *testing.T) {
	pool := testPool(t)
	users := NewUserService(pool)

	_, err := users.GetProfileByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.Error(t, err)
}

func TestGetProfileLapsedPremiumReadsFalse(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	users := NewUserService(pool)
	ctx := context.Background()

	userID := seedProfile(t, pool)
	_, err := billing.ActivateSubscription(ctx, userID, "sub_lapsed_1", 99.00, "cs_lapsed_1")
	require.NoError(t, err)

	// Push premium_until into the past without running the expiry sweep.
	_, err = pool.Exec(ctx, `UPDATE profiles SET premium_until = NOW() - INTERVAL '1 hour' WHERE id = $1`, userID)
	require.NoError(t, err)

	p, err := users.GetProfileByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, p.IsPremium, "lapsed premium must not read as premium before the sweep")
}

func TestGetTransactionsEmpty(t *testing.T) {
	pool := testPool(t)
	users := NewUserService(pool)

	userID := seedProfile(t, pool)
	transactions, err := users.GetTransactions(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}
