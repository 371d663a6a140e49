package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"satDuangDaoAPI/internal/types/profile"
	"satDuangDaoAPI/services"

	"github.com/google/uuid"
)

// ProfileUpserter is the slice of the user store the login flow needs.
type ProfileUpserter interface {
	UpsertLineProfile(ctx context.Context, lineUserID, displayName, avatarURL string) (*profile.Profile, error)
}

type AuthHandler struct {
	authService *services.AuthService
	users       ProfileUpserter
	siteURL     string
}

func NewAuthHandler(authService *services.AuthService, users ProfileUpserter, siteURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
		siteURL:     siteURL,
	}
}

// HandleLineAuth serves both legs of LINE Login: ?action=login redirects to
// the LINE authorize page, ?action=callback exchanges the code, upserts the
// profile and sends the user back to the site with a session token in the
// URL fragment.
func (h *AuthHandler) HandleLineAuth(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "login":
		state := uuid.New().String()
		http.Redirect(w, r, h.authService.AuthorizeURL(state), http.StatusFound)

	case "callback":
		h.handleCallback(w, r)

	default:
		respondWithError(w, http.StatusBadRequest, "Unknown action")
	}
}

func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	code := r.URL.Query().Get("code")
	if errMsg := r.URL.Query().Get("error"); errMsg != "" || code == "" {
		msg := r.URL.Query().Get("error_description")
		if msg == "" {
			msg = "LINE login cancelled"
		}
		h.redirectWithError(w, r, msg)
		return
	}

	accessToken, err := h.authService.ExchangeCode(ctx, code)
	if err != nil {
		log.Printf("LINE token exchange failed: %v", err)
		h.redirectWithError(w, r, "token_exchange_failed")
		return
	}

	lineProfile, err := h.authService.FetchProfile(ctx, accessToken)
	if err != nil {
		log.Printf("LINE profile fetch failed: %v", err)
		h.redirectWithError(w, r, "profile_fetch_failed")
		return
	}

	p, err := h.users.UpsertLineProfile(ctx, lineProfile.UserID, lineProfile.DisplayName, lineProfile.PictureURL)
	if err != nil {
		log.Printf("Failed to upsert profile for LINE user %s: %v", lineProfile.UserID, err)
		h.redirectWithError(w, r, "profile_save_failed")
		return
	}

	token, err := h.authService.IssueToken(p.ID)
	if err != nil {
		log.Printf("Failed to issue session token: %v", err)
		h.redirectWithError(w, r, "token_issue_failed")
		return
	}

	http.Redirect(w, r, h.siteURL+"/#token="+url.QueryEscape(token), http.StatusFound)
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, h.siteURL+"?login_error="+url.QueryEscape(msg), http.StatusFound)
}
