package zalo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	errx "github.com/vngglass/orderchat/internal/core/error"
	logx "github.com/vngglass/orderchat/pkg/logger"
)

// Provider error codes that mean the cached access token is no longer
// usable and a refresh may rescue the send.
const (
	codeInvalidToken = -216
	codeAPIRetired   = -240
)

// SendResult tags how a delivery concluded, so the single-retry guarantee
// stays auditable at the call site.
type SendResult string

const (
	// Sent means the first attempt with the cached token succeeded.
	Sent SendResult = "sent"
	// RetriedAndSent means the first attempt hit a token-class error and the
	// retry after one refresh succeeded.
	RetriedAndSent SendResult = "retried_and_sent"
	// Failed means delivery did not happen; the accompanying error says why.
	Failed SendResult = "failed"
)

// Config holds the messaging provider settings.
type Config struct {
	AppID       string `split_words:"true" required:"true"`
	AppSecret   string `split_words:"true" required:"true"`
	AccessToken string `split_words:"true"`
	APIBaseURL  string `envconfig:"API_BASE_URL" default:"https://openapi.zalo.me/v3.0/oa"`
	OAuthURL    string `envconfig:"OAUTH_URL" default:"https://oauth.zaloapp.com/v4/oa/access_token"`
	Timeout     int    `split_words:"true" default:"10"`
}

// Messenger delivers replies through the Zalo Official Account API. It owns
// the access-token lifecycle: the token is cached process-wide, refreshed at
// most once per send on a token-class error, and the send is retried exactly
// once with the fresh token.
type Messenger struct {
	cfg    Config
	client *http.Client

	mu    sync.RWMutex
	token string

	refresh singleflight.Group
}

// NewMessenger creates the messenger. cfg.AccessToken seeds the cache; an
// empty seed just means the first send refreshes before reaching the
// provider successfully.
func NewMessenger(cfg Config) *Messenger {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Messenger{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		token:  cfg.AccessToken,
	}
}

// Send delivers one text message to the user. The result is Sent,
// RetriedAndSent or Failed; err is non-nil exactly when the result is
// Failed. A second failure after refresh is never retried again.
func (m *Messenger) Send(ctx context.Context, userID, text string) (SendResult, error) {
	sendErr := m.sendOnce(ctx, userID, text, m.currentToken())
	if sendErr == nil {
		return Sent, nil
	}
	if !isTokenError(sendErr) {
		logx.Error().Err(sendErr).Str("user_id", userID).Msg("message delivery failed")
		return Failed, errx.New(sendErr, http.StatusBadGateway, errx.DeliveryErrorMessage)
	}

	token, refreshErr := m.refreshToken(ctx)
	if refreshErr != nil {
		// Refresh failure short-circuits the retry; the original failure is
		// what the caller should see.
		logx.Error().Err(refreshErr).Msg("access token refresh failed")
		return Failed, errx.New(sendErr, http.StatusBadGateway, errx.DeliveryErrorMessage)
	}

	if retryErr := m.sendOnce(ctx, userID, text, token); retryErr != nil {
		logx.Error().Err(retryErr).Str("user_id", userID).Msg("message delivery failed after token refresh")
		return Failed, errx.New(retryErr, http.StatusBadGateway, errx.DeliveryErrorMessage)
	}

	logx.Info().Str("user_id", userID).Msg("message delivered after token refresh")
	return RetriedAndSent, nil
}

func (m *Messenger) currentToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// providerError is a non-zero error code in the provider's response body.
type providerError struct {
	Code    int
	Message string
}

func (e *providerError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

func isTokenError(err error) bool {
	pe, ok := err.(*providerError)
	return ok && (pe.Code == codeInvalidToken || pe.Code == codeAPIRetired)
}

// sendOnce performs a single delivery attempt with the given token.
func (m *Messenger) sendOnce(ctx context.Context, userID, text, token string) error {
	if token == "" {
		return &providerError{Code: codeInvalidToken, Message: "no access token cached"}
	}

	body, err := json.Marshal(sendRequest{
		Recipient: sendRecipient{UserID: userID},
		Message:   sendMessage{Text: text},
	})
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	url := strings.TrimRight(m.cfg.APIBaseURL, "/") + "/message/cs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", token)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read send response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode send response: %w", err)
	}
	if out.Error != 0 {
		return &providerError{Code: out.Error, Message: out.Message}
	}
	return nil
}

// refreshToken fetches a fresh access token from the credential endpoint.
// Concurrent sends that all hit a token error share one refresh call.
func (m *Messenger) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := m.refresh.Do("token", func() (any, error) {
		token, err := m.fetchToken(ctx)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		m.token = token
		m.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Messenger) fetchToken(ctx context.Context) (string, error) {
	if m.cfg.AppID == "" || m.cfg.AppSecret == "" {
		return "", fmt.Errorf("app credentials not configured")
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     m.cfg.AppID,
		"app_secret": m.cfg.AppSecret,
		"grant_type": "client_credentials",
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.OAuthURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("credential endpoint returned status %d", resp.StatusCode)
	}

	var out tokenResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if out.Error != 0 {
		return "", fmt.Errorf("credential endpoint error %d: %s", out.Error, out.Message)
	}
	if out.Data.AccessToken == "" {
		return "", fmt.Errorf("credential endpoint returned empty token")
	}

	logx.Info().Msg("access token refreshed")
	return out.Data.AccessToken, nil
}
