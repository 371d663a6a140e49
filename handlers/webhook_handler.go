package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"satDuangDaoAPI/internal/types/payment"
	"satDuangDaoAPI/middleware"
)

// BillingStore is the datastore capability the webhook needs. Every method
// applies its effects at most once; the bool result reports whether the
// event actually changed state (false means duplicate delivery or no
// matching profile, both acknowledged as success).
type BillingStore interface {
	ApplyCreditPurchase(ctx context.Context, userID string, credits int, amount float64, sessionID string) (bool, error)
	ActivateSubscription(ctx context.Context, userID, subscriptionID string, amount float64, sessionID string) (bool, error)
	RenewSubscription(ctx context.Context, subscriptionID string, amountPaid float64, invoiceID string) (bool, error)
	SyncSubscriptionStatus(ctx context.Context, subscriptionID, status string, periodEnd time.Time) (bool, error)
}

type WebhookHandler struct {
	billing BillingStore
	secret  string
}

func NewWebhookHandler(billing BillingStore, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		billing: billing,
		secret:  webhookSecret,
	}
}

// HandleStripeWebhook processes events sent by Stripe. The body is read raw
// and verified before any parsing: re-serializing JSON can change the byte
// layout and break the signature. Stripe delivers at least once, so every
// effect behind this endpoint is idempotent; a 400 tells Stripe the request
// is permanently bad, a 500 asks it to retry.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		middleware.CountWebhookRejection("missing_signature")
		respondWithError(w, http.StatusBadRequest, "Missing stripe-signature header")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if !verifyStripeSignature(body, signature, h.secret, time.Now()) {
		log.Println("Invalid webhook signature")
		middleware.CountWebhookRejection("invalid_signature")
		respondWithError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	var event payment.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Error parsing webhook JSON: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	ctx := r.Context()

	switch event.Type {
	case payment.EventCheckoutSessionCompleted:
		h.handleCheckoutCompleted(ctx, w, event.Data.Object)

	case payment.EventInvoicePaid:
		h.handleInvoicePaid(ctx, w, event.Data.Object)

	case payment.EventSubscriptionUpdated, payment.EventSubscriptionDeleted:
		h.handleSubscriptionChanged(ctx, w, event.Data.Object)

	default:
		log.Printf("Unhandled webhook event type: %s", event.Type)
		acknowledge(w)
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, w http.ResponseWriter, raw json.RawMessage) {
	var session payment.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		log.Printf("Error parsing checkout session: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	if session.PaymentStatus != payment.PaymentStatusPaid {
		log.Printf("Session %s not yet paid, skipping", session.ID)
		acknowledge(w)
		return
	}

	userID := session.Metadata["userId"]
	if userID == "" {
		log.Printf("Session %s missing userId metadata", session.ID)
		respondWithError(w, http.StatusBadRequest, "Missing metadata")
		return
	}

	amount := float64(session.AmountTotal) / 100

	if session.Metadata["type"] == payment.CheckoutTypeSubscription {
		applied, err := h.billing.ActivateSubscription(ctx, userID, session.Subscription, amount, session.ID)
		if err != nil {
			log.Printf("Error activating subscription: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Error activating subscription")
			return
		}
		if applied {
			log.Printf("Activated premium for user %s (subscription %s)", userID, session.Subscription)
		}
		acknowledge(w)
		return
	}

	credits, err := strconv.Atoi(session.Metadata["credits"])
	if err != nil || credits <= 0 {
		log.Printf("Session %s has missing or invalid credits metadata: %q", session.ID, session.Metadata["credits"])
		respondWithError(w, http.StatusBadRequest, "Missing metadata")
		return
	}

	applied, err := h.billing.ApplyCreditPurchase(ctx, userID, credits, amount, session.ID)
	if err != nil {
		log.Printf("Error adding credits: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Error adding credits")
		return
	}
	if applied {
		log.Printf("Added %d credits to user %s", credits, userID)
	}
	acknowledge(w)
}

func (h *WebhookHandler) handleInvoicePaid(ctx context.Context, w http.ResponseWriter, raw json.RawMessage) {
	var invoice payment.Invoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		log.Printf("Error parsing invoice: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	if invoice.BillingReason != payment.BillingReasonSubscriptionCycle {
		acknowledge(w)
		return
	}

	applied, err := h.billing.RenewSubscription(ctx, invoice.Subscription, float64(invoice.AmountPaid)/100, invoice.ID)
	if err != nil {
		log.Printf("Error renewing subscription: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Error renewing subscription")
		return
	}
	if applied {
		log.Printf("Extended premium for subscription %s", invoice.Subscription)
	}
	acknowledge(w)
}

func (h *WebhookHandler) handleSubscriptionChanged(ctx context.Context, w http.ResponseWriter, raw json.RawMessage) {
	var sub payment.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		log.Printf("Error parsing subscription: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	found, err := h.billing.SyncSubscriptionStatus(ctx, sub.ID, sub.Status, time.Unix(sub.CurrentPeriodEnd, 0))
	if err != nil {
		log.Printf("Error syncing subscription status: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Error updating subscription")
		return
	}
	if found {
		log.Printf("Subscription %s is now %s", sub.ID, sub.Status)
	}
	acknowledge(w)
}

func acknowledge(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
