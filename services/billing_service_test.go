package services

import (
	"context"
	"os"
	"testing"
	"time"

	"satDuangDaoAPI/internal/types/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to the database named by TEST_DATABASE_URL, applies the
// schema and wipes both tables. Tests are skipped when no database is
// configured so the unit suites still run standalone.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../db/schema.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, "TRUNCATE transactions, profiles")
	require.NoError(t, err)

	return pool
}

func seedProfile(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	id := uuid.New().String()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO profiles (id, line_user_id, display_name, email)
		VALUES ($1, $2, 'Test User', $3)
	`, id, "line_"+id, "test_"+id+"@satduangdao.com")
	require.NoError(t, err)
	return id
}

func TestApplyCreditPurchase(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	users := NewUserService(pool)
	ctx := context.Background()

	userID := seedProfile(t, pool)

	applied, err := billing.ApplyCreditPurchase(ctx, userID, 15, 79.00, "cs_apply_1")
	require.NoError(t, err)
	assert.True(t, applied)

	p, err := users.GetProfileByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Credits)

	transactions, err := users.GetTransactions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "cs_apply_1", transactions[0].StripeSessionID)
	assert.InDelta(t, 79.00, transactions[0].Amount, 0.001)
}

func TestApplyCreditPurchaseIdempotent(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	users := NewUserService(pool)
	ctx := context.Background()

	userID := seedProfile(t, pool)

	applied, err := billing.ApplyCreditPurchase(ctx, userID, 5, 29.00, "cs_dup_1")
	require.NoError(t, err)
	assert.True(t, applied)

	// Redelivered event: same session id, no further effects.
	applied, err = billing.ApplyCreditPurchase(ctx, userID, 5, 29.00, "cs_dup_1")
	require.NoError(t, err)
	assert.False(t, applied)

	p, err := users.GetProfileByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Credits)

	transactions, err := users.GetTransactions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestApplyCreditPurchaseUnknownProfile(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	ctx := context.Background()

	_, err := billing.ApplyCreditPurchase(ctx, uuid.New().String(), 5, 29.00, "cs_ghost_1")
	assert.Error(t, err)

	// The rolled-back ledger row must not block a later retry.
	userID := seedProfile(t, pool)
	applied, err := billing.ApplyCreditPurchase(ctx, userID, 5, 29.00, "cs_ghost_1")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestActivateSubscription(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	users := NewUserService(pool)
	ctx := context.Background()

	userID := seedProfile(t, pool)

	applied, err := billing.ActivateSubscription(ctx, userID, "sub_act_1", 99.00, "cs_sub_1")
	require.NoError(t, err)
	assert.True(t, applied)

	p, err := users.GetProfileByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, p.IsPremium)
	assert.Equal(t, profile.StatusActive, p.SubscriptionStatus)
	require.NotNil(t, p.SubscriptionID)
	assert.Equal(t, "sub_act_1", *p.SubscriptionID)

	require.NotNil(t, p.PremiumUntil)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *p.PremiumUntil, time.Minute)
}

func TestRenewSubscription(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	users := NewUserService(pool)
	ctx := context.Background()

	userID := seedProfile(t, pool)
	_, err := billing.ActivateSubscription(ctx, userID, "sub_renew_1", 99.00, "cs_renew_1")
	require.NoError(t, err)

	applied, err := billing.RenewSubscription(ctx, "sub_renew_1", 99.00, "in_renew_1")
	require.NoError(t, err)
	assert.True(t, applied)

	// Same invoice again is a no-op.
	applied, err = billing.RenewSubscription(ctx, "sub_renew_1", 99.00, "in_renew_1")
	require.NoError(t, err)
	assert.False(t, applied)

	transactions, err := users.GetTransactions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestRenewSubscriptionUnknown(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	ctx := context.Background()

	applied, err := billing.RenewSubscription(ctx, "sub_nobody", 99.00, "in_nobody_1")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestSyncSubscriptionStatusCancel(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	users := NewUserService(pool)
	ctx := context.Background()

	userID := seedProfile(t, pool)
	_, err := billing.ActivateSubscription(ctx, userID, "sub_sync_1", 99.00, "cs_sync_1")
	require.NoError(t, err)

	found, err := billing.SyncSubscriptionStatus(ctx, "sub_sync_1", profile.StatusCanceled, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, found)

	p, err := users.GetProfileByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, p.IsPremium)
	assert.Equal(t, profile.StatusCanceled, p.SubscriptionStatus)
}

func TestExpireLapsedPremium(t *testing.T) {
	pool := testPool(t)
	billing := NewBillingService(pool)
	users := NewUserService(pool)
	ctx := context.Background()

	lapsed := seedProfile(t, pool)
	current := seedProfile(t, pool)

	_, err := pool.Exec(ctx, `
		UPDATE profiles
		SET is_premium = true, subscription_status = 'active', premium_until = NOW() - INTERVAL '1 day'
		WHERE id = $1
	`, lapsed)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		UPDATE profiles
		SET is_premium = true, subscription_status = 'active', premium_until = NOW() + INTERVAL '10 days'
		WHERE id = $1
	`, current)
	require.NoError(t, err)

	expired, err := billing.ExpireLapsedPremium(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	p, err := users.GetProfileByID(ctx, lapsed)
	require.NoError(t, err)
	assert.False(t, p.IsPremium)
	assert.Equal(t, profile.StatusInactive, p.SubscriptionStatus)

	p, err = users.GetProfileByID(ctx, current)
	require.NoError(t, err)
	assert.True(t, p.IsPremium)
}
