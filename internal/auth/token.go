// Package auth handles the Gmail OAuth2 token: consent flow, persistence and
// the HTTP callback.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

const stateTTL = 5 * time.Minute

var (
	// ErrTokenNotSet indicates no OAuth token is available.
	ErrTokenNotSet  = errors.New("no token defined")
	ErrInvalidState = errors.New("invalid or expired state parameter")
)

// Scopes needed to send, label and trash messages.
var Scopes = []string{gmail.GmailModifyScope, gmail.GmailLabelsScope}

// NewConfig builds the Google OAuth2 config for the callback at redirectURL.
func NewConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// Token manages OAuth2 tokens with thread-safe operations.
type Token struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
	states      map[string]time.Time
	log         *zap.Logger
}

// NewToken creates a Token manager, loading from disk if path provided.
func NewToken(cfg *oauth2.Config, persistPath string, log *zap.Logger) (*Token, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Token{
		cfg:         cfg,
		persistPath: persistPath,
		states:      make(map[string]time.Time),
		log:         log,
	}
	if persistPath == "" {
		return t, nil
	}

	raw, err := os.ReadFile(persistPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("token file not found, it will be created on shutdown", zap.String("path", persistPath))
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile failed: %w", err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("json.Unmarshal failed: %w", err)
	}
	t.token = token

	return t, nil
}

// RedirectURL generates the consent URL with a fresh single-use state.
func (t *Token) RedirectURL() (string, error) {
	state, err := t.generateState()
	if err != nil {
		return "", fmt.Errorf("generateState failed: %w", err)
	}

	return t.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (t *Token) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for s, exp := range t.states {
		if exp.Before(now) {
			delete(t.states, s)
		}
	}
	t.states[state] = now.Add(stateTTL)

	return state, nil
}

func (t *Token) consumeState(state string) bool {
	if state == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, ok := t.states[state]
	if !ok {
		return false
	}
	delete(t.states, state)

	return time.Now().Before(expiry)
}

// AuthorizeCode exchanges an authorization code for a token after validating state.
func (t *Token) AuthorizeCode(ctx context.Context, code, state string) error {
	if !t.consumeState(state) {
		return ErrInvalidState
	}

	tok, err := t.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	t.mu.Lock()
	t.token = tok
	t.mu.Unlock()

	t.log.Info("oauth token authorized", zap.Time("expiry", tok.Expiry))
	return nil
}

// OAuthToken returns the current OAuth2 token.
func (t *Token) OAuthToken() (*oauth2.Token, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil, ErrTokenNotSet
	}

	return t.token, nil
}

// Persist saves the token to disk.
func (t *Token) Persist() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.persistPath == "" || t.token == nil {
		return nil
	}

	raw, err := json.Marshal(t.token)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.persistPath), 0o700); err != nil {
		return fmt.Errorf("os.MkdirAll failed: %w", err)
	}
	if err := os.WriteFile(t.persistPath, raw, 0o600); err != nil {
		return fmt.Errorf("os.WriteFile failed: %w", err)
	}

	return nil
}
