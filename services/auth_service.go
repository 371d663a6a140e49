package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"satDuangDaoAPI/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService drives the LINE Login flow (authorize redirect, code
// exchange, profile fetch) and issues the session JWTs the API accepts.
type AuthService struct {
	cfg    *config.Config
	client *http.Client
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type LineProfile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

func (s *AuthService) callbackURL() string {
	return s.cfg.BaseURL + "/auth/line?action=callback"
}

// AuthorizeURL builds the LINE authorize redirect for the login step.
func (s *AuthService) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.cfg.LineChannelID)
	q.Set("redirect_uri", s.callbackURL())
	q.Set("state", state)
	q.Set("scope", "profile openid email")
	return s.cfg.LineAuthorizeURL + "?" + q.Encode()
}

// ExchangeCode trades the callback code for a LINE access token.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.callbackURL())
	form.Set("client_id", s.cfg.LineChannelID)
	form.Set("client_secret", s.cfg.LineChannelSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.LineTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	var tokenData struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenData); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenData.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access token")
	}

	return tokenData.AccessToken, nil
}

// FetchProfile loads the LINE profile behind an access token.
func (s *AuthService) FetchProfile(ctx context.Context, accessToken string) (*LineProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.LineProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	var profile LineProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	if profile.UserID == "" {
		return nil, fmt.Errorf("profile response missing userId")
	}

	return &profile, nil
}

// IssueToken signs a session JWT for the given profile id, valid 7 days.
func (s *AuthService) IssueToken(profileID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": profileID,
		"iss": "satduangdao",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
