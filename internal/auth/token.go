// Package auth issues and checks the shared secrets guarding the sync
// trigger and the public calendar feed.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// FeedSigner issues per-tenant calendar feed tokens. A token is the hex
// HMAC-SHA256 of the tenant id under a server-held secret.
type FeedSigner struct {
	secret []byte
}

// NewFeedSigner creates a signer for secret.
func NewFeedSigner(secret string) *FeedSigner {
	return &FeedSigner{secret: []byte(secret)}
}

// Token returns the feed token of tenantID.
func (s *FeedSigner) Token(tenantID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(tenantID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token was issued for tenantID. An unconfigured
// secret verifies nothing.
func (s *FeedSigner) Verify(tenantID, token string) bool {
	if len(s.secret) == 0 || token == "" || tenantID == "" {
		return false
	}
	expected, err := hex.DecodeString(s.Token(tenantID))
	if err != nil {
		return false
	}
	provided, err := hex.DecodeString(strings.ToLower(token))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, provided)
}

// BearerSecret authenticates requests presenting a shared secret in the
// Authorization header.
type BearerSecret struct {
	Secret string
}

// Authenticate reports whether r carries "Authorization: Bearer <secret>".
// An empty secret rejects every request.
func (b BearerSecret) Authenticate(r *http.Request) bool {
	if b.Secret == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return secureCompare(strings.TrimSpace(token), b.Secret)
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
