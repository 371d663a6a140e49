package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"satDuangDaoAPI/internal/store"
	"satDuangDaoAPI/middleware"

	"github.com/go-playground/validator/v10"
)

// CheckoutProvider creates hosted payment sessions with the payment
// provider.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, pkg *store.Package, userID, userEmail, origin string) (string, error)
	CreatePortalSession(ctx context.Context, userEmail, origin string) (string, error)
}

type CheckoutHandler struct {
	checkoutService CheckoutProvider
	siteURL         string
	validate        *validator.Validate
}

func NewCheckoutHandler(checkoutService CheckoutProvider, siteURL string) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		siteURL:         siteURL,
		validate:        validator.New(),
	}
}

type CreateCheckoutRequest struct {
	PackageID string `json:"packageId" validate:"required"`
	UserEmail string `json:"userEmail" validate:"omitempty,email"`
}

type CreatePortalRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

// GetPackages lists the purchasable credit bundles and the premium plan.
func (h *CheckoutHandler) GetPackages(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, store.All())
}

func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var reqBody CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&reqBody); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Validation failed: %v", err))
		return
	}

	pkg, ok := store.Find(reqBody.PackageID)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid package")
		return
	}

	url, err := h.checkoutService.CreateCheckoutSession(ctx, pkg, userID, reqBody.UserEmail, h.origin(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *CheckoutHandler) CreatePortal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if _, ok := middleware.GetUserID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var reqBody CreatePortalRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&reqBody); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Validation failed: %v", err))
		return
	}

	url, err := h.checkoutService.CreatePortalSession(ctx, reqBody.UserEmail, h.origin(r))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "No billing account found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

// origin picks the redirect base for Stripe success/cancel URLs.
func (h *CheckoutHandler) origin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return o
	}
	return h.siteURL
}

func (h *CheckoutHandler) PaymentSuccessPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>ชำระเงินสำเร็จ</title>
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<style>
			body { background-color: #0B0B1A; color: #EDE7FF; font-family: sans-serif; text-align: center; padding: 50px 20px; }
			h1 { color: #C9A84C; }
			p { color: #9A8FC0; }
			.card { background: #161230; padding: 30px; border-radius: 15px; max-width: 400px; margin: 0 auto; }
		</style>
	</head>
	<body>
		<div class="card">
			<h1>ชำระเงินสำเร็จ!</h1>
			<p>ขอบคุณที่ใช้บริการ SatDuangDao เครดิตของคุณพร้อมใช้งานแล้ว</p>
			<p>You can close this window and return to your reading.</p>
		</div>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
