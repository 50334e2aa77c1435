package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type tokenInfoResponse struct {
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

// Verifier validates Google ID tokens for patient sign-in via the tokeninfo endpoint.
type Verifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

// NewVerifier creates a new Google ID token verifier.
func NewVerifier(clientID string) *Verifier {
	return NewVerifierWithEndpoint(clientID, tokenInfoURL)
}

// NewVerifierWithEndpoint targets a custom tokeninfo URL, for tests.
func NewVerifierWithEndpoint(clientID, endpoint string) *Verifier {
	return &Verifier{
		clientID: clientID,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*port.SocialAuthClaims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?id_token="+url.QueryEscape(idToken), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrSocialAuthTokenInvalid
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrSocialAuthTokenInvalid
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, domain.ErrSocialAuthTokenInvalid
	}

	if info.Aud != v.clientID || info.Sub == "" {
		return nil, domain.ErrSocialAuthTokenInvalid
	}
	if info.Iss != "accounts.google.com" && info.Iss != "https://accounts.google.com" {
		return nil, domain.ErrSocialAuthTokenInvalid
	}

	return &port.SocialAuthClaims{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
		FullName:      info.Name,
	}, nil
}

// Provider returns the auth provider name stored on linked users.
func (v *Verifier) Provider() string {
	return string(domain.AuthProviderGoogle)
}

var _ port.SocialTokenVerifier = (*Verifier)(nil)
