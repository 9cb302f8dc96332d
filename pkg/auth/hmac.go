package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HMACVerifier verifies self-contained session tokens of the form
// "userID.workspaceID.expiryUnix.signature", signed with a shared
// secret. Deployments with a dedicated session service supply their own
// TokenVerifier instead.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier over the shared signing secret.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

var _ TokenVerifier = (*HMACVerifier)(nil)

// Sign mints a token. Used by tests and the local CLI; production
// tokens come from the workspace application's session layer.
func (v *HMACVerifier) Sign(userID, workspaceID string, ttl time.Duration) string {
	expiry := strconv.FormatInt(time.Now().Add(ttl).Unix(), 10)
	payload := userID + "." + workspaceID + "." + expiry
	return payload + "." + v.signature(payload)
}

// Verify checks signature and expiry and returns the token's claims.
func (v *HMACVerifier) Verify(ctx context.Context, token string) (string, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("malformed token")
	}

	payload := strings.Join(parts[:3], ".")
	if !hmac.Equal([]byte(v.signature(payload)), []byte(parts[3])) {
		return "", "", fmt.Errorf("invalid token signature")
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("malformed token expiry")
	}
	if time.Now().Unix() > expiry {
		return "", "", fmt.Errorf("token expired")
	}

	return parts[0], parts[1], nil
}

func (v *HMACVerifier) signature(payload string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
