package payment

import (
	"encoding/json"
	"time"
)

// Event types we act on. Everything else is acknowledged as a no-op so
// Stripe stops retrying.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventInvoicePaid              = "invoice.paid"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

const (
	CheckoutTypeOneTime      = "one_time"
	CheckoutTypeSubscription = "subscription"

	PaymentStatusPaid = "paid"

	BillingReasonSubscriptionCycle = "subscription_cycle"
)

// PremiumPeriod is how long one paid subscription cycle lasts.
const PremiumPeriod = 30 * 24 * time.Hour

// Event is the webhook envelope. Data.Object is kept raw and decoded into
// the shape matching Event.Type, so unrecognized types stay opaque.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type CheckoutSession struct {
	ID            string            `json:"id"`
	AmountTotal   int64             `json:"amount_total"`
	PaymentStatus string            `json:"payment_status"`
	Subscription  string            `json:"subscription"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

type Invoice struct {
	ID            string `json:"id"`
	BillingReason string `json:"billing_reason"`
	Subscription  string `json:"subscription"`
	AmountPaid    int64  `json:"amount_paid"`
}

type Subscription struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}
