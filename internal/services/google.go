package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Identity-provider failure modes, distinguished so the handlers can map
// them to different outcomes.
var (
	// ErrInvalidToken means the provider rejected the credential.
	ErrInvalidToken = errors.New("identity provider rejected token")
	// ErrUpstreamUnavailable means the provider could not be reached.
	ErrUpstreamUnavailable = errors.New("identity provider unreachable")
)

var googleHTTPClient = &http.Client{Timeout: 15 * time.Second}

// GoogleUserInfo is the subset of the userinfo response we consume.
type GoogleUserInfo struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// GoogleService exchanges OAuth access tokens for verified user info.
type GoogleService struct {
	userInfoURL string
}

// NewGoogleService constructs a GoogleService against the given userinfo
// endpoint.
func NewGoogleService(userInfoURL string) *GoogleService {
	return &GoogleService{userInfoURL: userInfoURL}
}

// FetchUserInfo validates the access token with Google and returns the
// profile it vouches for. No retries: upstream failures surface to the
// caller.
func (s *GoogleService) FetchUserInfo(accessToken string) (*GoogleUserInfo, error) {
	endpoint := s.userInfoURL + "?access_token=" + url.QueryEscape(accessToken)

	resp, err := googleHTTPClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrInvalidToken, resp.StatusCode, string(body))
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("google userinfo unmarshal: %w", err)
	}

	if info.Email == "" {
		return nil, fmt.Errorf("%w: userinfo response missing email", ErrInvalidToken)
	}

	return &info, nil
}
