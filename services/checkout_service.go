package services

import (
	"context"
	"fmt"

	"satDuangDaoAPI/internal/store"
	"satDuangDaoAPI/internal/types/payment"

	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
)

// CheckoutService creates Stripe Checkout and Billing Portal sessions.
// Inbound webhook verification stays SDK-free; this is outbound only.
type CheckoutService struct{}

func NewCheckoutService() *CheckoutService {
	return &CheckoutService{}
}

// CreateCheckoutSession builds a checkout session for a catalog package.
// One-time credit bundles charge via PromptPay, the premium subscription
// via card (PromptPay cannot bill recurring). The metadata written here is
// exactly what the webhook reads back on checkout.session.completed.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, pkg *store.Package, userID, userEmail, origin string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(origin + "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(origin + "/payment/cancel"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("thb"),
					UnitAmount: stripe.Int64(pkg.Price),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(pkg.Label),
					},
				},
			},
		},
	}
	params.Context = ctx

	if pkg.Type == payment.CheckoutTypeSubscription {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
		params.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
		params.LineItems[0].PriceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	} else {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModePayment))
		params.PaymentMethodTypes = stripe.StringSlice([]string{"promptpay"})
	}

	params.AddMetadata("userId", userID)
	params.AddMetadata("packageId", pkg.ID)
	params.AddMetadata("type", pkg.Type)
	params.AddMetadata("credits", fmt.Sprintf("%d", pkg.Credits))

	if userEmail != "" {
		params.CustomerEmail = stripe.String(userEmail)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.URL, nil
}

// CreatePortalSession looks up the Stripe customer by email and opens a
// billing portal session for managing the subscription.
func (s *CheckoutService) CreatePortalSession(ctx context.Context, userEmail, origin string) (string, error) {
	searchParams := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query: fmt.Sprintf("email:'%s'", userEmail),
		},
	}
	searchParams.Context = ctx

	iter := customer.Search(searchParams)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return "", fmt.Errorf("failed to search customer: %w", err)
		}
		return "", fmt.Errorf("no stripe customer found for %s", userEmail)
	}
	cust := iter.Customer()

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(cust.ID),
		ReturnURL: stripe.String(origin + "/profile"),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	return sess.URL, nil
}
