package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"satDuangDaoAPI/internal/types/profile"
	"satDuangDaoAPI/internal/types/transaction"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BillingService struct {
	db *pgxpool.Pool
}

func NewBillingService(db *pgxpool.Pool) *BillingService {
	return &BillingService{db: db}
}

const insertTransactionQuery = `
	INSERT INTO transactions (user_id, amount, credits_added, status, payment_method, stripe_session_id, type)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (stripe_session_id) DO NOTHING
`

// ApplyCreditPurchase records a paid checkout session and adds the purchased
// credits to the profile. The ledger insert and the credit increment run in
// one database transaction, with the unique stripe_session_id constraint
// acting as the idempotency guard: a duplicate delivery inserts zero rows
// and applies zero effects. Returns false when the session was already
// processed.
func (s *BillingService) ApplyCreditPurchase(ctx context.Context, userID string, credits int, amount float64, sessionID string) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertTransactionQuery,
		userID, amount, credits, transaction.StatusApproved, transaction.MethodPromptPay, sessionID, transaction.TypeOneTime)
	if err != nil {
		return false, fmt.Errorf("failed to record transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("Checkout session %s already processed, skipping", sessionID)
		return false, nil
	}

	tag, err = tx.Exec(ctx, `
		UPDATE profiles
		SET credits = credits + $1, updated_at = NOW()
		WHERE id = $2
	`, credits, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("profile %s not found", userID)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit credit purchase: %w", err)
	}
	return true, nil
}

// ActivateSubscription flips the profile to premium for one billing period
// and records the subscription checkout in the ledger. Idempotent on the
// checkout session id, same as ApplyCreditPurchase.
func (s *BillingService) ActivateSubscription(ctx context.Context, userID, subscriptionID string, amount float64, sessionID string) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertTransactionQuery,
		userID, amount, 0, transaction.StatusApproved, transaction.MethodCard, sessionID, transaction.TypeSubscription)
	if err != nil {
		return false, fmt.Errorf("failed to record transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("Checkout session %s already processed, skipping", sessionID)
		return false, nil
	}

	tag, err = tx.Exec(ctx, `
		UPDATE profiles
		SET is_premium = true,
		    subscription_status = $2,
		    subscription_id = $3,
		    premium_until = NOW() + INTERVAL '30 days',
		    updated_at = NOW()
		WHERE id = $1
	`, userID, profile.StatusActive, subscriptionID)
	if err != nil {
		return false, fmt.Errorf("failed to activate premium: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("profile %s not found", userID)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit subscription activation: %w", err)
	}
	return true, nil
}

// RenewSubscription extends premium for the profile holding the given
// subscription id and records the renewal, keyed by the invoice id so a
// redelivered invoice.paid is a no-op. Returns false when no matching
// profile exists or the invoice was already applied.
func (s *BillingService) RenewSubscription(ctx context.Context, subscriptionID string, amountPaid float64, invoiceID string) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID string
	err = tx.QueryRow(ctx, `SELECT id FROM profiles WHERE subscription_id = $1`, subscriptionID).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			log.Printf("No profile found for subscription %s, ignoring renewal", subscriptionID)
			return false, nil
		}
		return false, fmt.Errorf("failed to look up subscription: %w", err)
	}

	tag, err := tx.Exec(ctx, insertTransactionQuery,
		userID, amountPaid, 0, transaction.StatusApproved, transaction.MethodCard, invoiceID, transaction.TypeSubscriptionRenewal)
	if err != nil {
		return false, fmt.Errorf("failed to record renewal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("Invoice %s already processed, skipping", invoiceID)
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET is_premium = true,
		    subscription_status = $2,
		    premium_until = NOW() + INTERVAL '30 days',
		    updated_at = NOW()
		WHERE id = $1
	`, userID, profile.StatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to extend premium: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit renewal: %w", err)
	}
	return true, nil
}

// SyncSubscriptionStatus mirrors a customer.subscription.updated/deleted
// event onto the matching profile. The incoming status is stored verbatim;
// premium access follows from it. Returns false when no profile holds the
// subscription.
func (s *BillingService) SyncSubscriptionStatus(ctx context.Context, subscriptionID, status string, periodEnd time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET subscription_status = $2,
		    is_premium = $3,
		    premium_until = $4,
		    updated_at = NOW()
		WHERE subscription_id = $1
	`, subscriptionID, status, profile.PremiumStatus(status), periodEnd)
	if err != nil {
		return false, fmt.Errorf("failed to sync subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("No profile found for subscription %s, ignoring status update", subscriptionID)
		return false, nil
	}
	return true, nil
}

// ExpireLapsedPremium demotes profiles whose paid period ran out without a
// cancellation event ever arriving. Called periodically by the expiry worker.
func (s *BillingService) ExpireLapsedPremium(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET is_premium = false,
		    subscription_status = $1,
		    updated_at = NOW()
		WHERE is_premium = true
		  AND premium_until IS NOT NULL
		  AND premium_until < NOW()
	`, profile.StatusInactive)
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed premium: %w", err)
	}
	return tag.RowsAffected(), nil
}
