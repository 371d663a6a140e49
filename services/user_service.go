package services

import (
	"context"
	"fmt"

	"satDuangDaoAPI/internal/types/profile"
	"satDuangDaoAPI/internal/types/transaction"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// GetProfileByID returns the profile with IsPremium computed read-time:
// the stored flag only counts while premium_until has not elapsed, so a
// lapsed subscription never reads as premium even before the expiry worker
// has swept it.
func (s *UserService) GetProfileByID(ctx context.Context, id string) (*profile.Profile, error) {
	query := `
	SELECT id, line_user_id, display_name, avatar_url, email, credits,
	       (is_premium AND COALESCE(premium_until > NOW(), false)),
	       subscription_status, subscription_id, premium_until, created_at, updated_at
	FROM profiles
	WHERE id = $1
	`

	var p profile.Profile
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.LineUserID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.Email,
		&p.Credits,
		&p.IsPremium,
		&p.SubscriptionStatus,
		&p.SubscriptionID,
		&p.PremiumUntil,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("profile not found")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// GetTransactions returns the user's ledger, newest first.
func (s *UserService) GetTransactions(ctx context.Context, userID string) ([]*transaction.Transaction, error) {
	query := `
	SELECT id, user_id, amount, credits_added, status, payment_method, stripe_session_id, type, created_at
	FROM transactions
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT 50
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		var t transaction.Transaction
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Amount,
			&t.CreditsAdded,
			&t.Status,
			&t.PaymentMethod,
			&t.StripeSessionID,
			&t.Type,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// UpsertLineProfile creates or refreshes the profile for a LINE login.
// Profiles are keyed internally by UUID; the LINE user id carries the
// uniqueness.
func (s *UserService) UpsertLineProfile(ctx context.Context, lineUserID, displayName, avatarURL string) (*profile.Profile, error) {
	email := fmt.Sprintf("line_%s@satduangdao.com", lineUserID)

	query := `
	INSERT INTO profiles (id, line_user_id, display_name, avatar_url, email)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (line_user_id) DO UPDATE
	SET display_name = EXCLUDED.display_name,
	    avatar_url = EXCLUDED.avatar_url,
	    updated_at = NOW()
	RETURNING id, line_user_id, display_name, avatar_url, email, credits, is_premium,
	          subscription_status, subscription_id, premium_until, created_at, updated_at
	`

	var p profile.Profile
	err := s.db.QueryRow(ctx, query, uuid.New().String(), lineUserID, displayName, avatarURL, email).Scan(
		&p.ID,
		&p.LineUserID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.Email,
		&p.Credits,
		&p.IsPremium,
		&p.SubscriptionStatus,
		&p.SubscriptionID,
		&p.PremiumUntil,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return &p, nil
}
