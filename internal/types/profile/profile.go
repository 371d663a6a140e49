package profile

import "time"

const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusInactive = "inactive"
)

type Profile struct {
	ID                 string     `json:"id" db:"id"`
	LineUserID         string     `json:"lineUserId" db:"line_user_id"`
	DisplayName        string     `json:"displayName" db:"display_name"`
	AvatarURL          string     `json:"avatarUrl" db:"avatar_url"`
	Email              string     `json:"email" db:"email"`
	Credits            int        `json:"credits" db:"credits"`
	IsPremium          bool       `json:"isPremium" db:"is_premium"`
	SubscriptionStatus string     `json:"subscriptionStatus" db:"subscription_status"`
	SubscriptionID     *string    `json:"subscriptionId,omitempty" db:"subscription_id"`
	PremiumUntil       *time.Time `json:"premiumUntil,omitempty" db:"premium_until"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}

// PremiumStatus reports whether a subscription status grants premium access.
func PremiumStatus(status string) bool {
	return status == StatusActive || status == StatusTrialing
}
