package transaction

import "time"

const (
	TypeOneTime             = "one_time"
	TypeSubscription        = "subscription"
	TypeSubscriptionRenewal = "subscription_renewal"

	StatusApproved = "approved"

	MethodPromptPay = "stripe_promptpay"
	MethodCard      = "stripe_card"
)

// Transaction is an append-only ledger row. StripeSessionID is unique and
// doubles as the idempotency key for webhook deliveries.
type Transaction struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"userId" db:"user_id"`
	Amount          float64   `json:"amount" db:"amount"`
	CreditsAdded    int       `json:"creditsAdded" db:"credits_added"`
	Status          string    `json:"status" db:"status"`
	PaymentMethod   string    `json:"paymentMethod" db:"payment_method"`
	StripeSessionID string    `json:"stripeSessionId" db:"stripe_session_id"`
	Type            string    `json:"type" db:"type"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
