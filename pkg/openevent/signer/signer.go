// Package signer implements the vendor's KSO-1 authentication scheme:
// HMAC-SHA256 handshake signing for the WebSocket upgrade request, and
// constant-time verification of per-event signatures.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// Scheme is the literal authentication scheme name used in both the
// canonical string and the Authorization header.
const Scheme = "KSO-1"

// dateLayout is RFC 1123 with a literal GMT zone, matching the
// vendor's expected Date header format exactly.
const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Signer signs handshake requests and verifies inbound event
// signatures for one app credential pair.
type Signer struct {
	AppID     string
	AppSecret string
}

// New creates a Signer bound to one app credential pair.
func New(appID, appSecret string) Signer {
	return Signer{AppID: appID, AppSecret: appSecret}
}

// HandshakeHeaders computes the X-Kso-Date and X-Kso-Authorization
// headers for a GET request to uri (path + query, no scheme/host), per
// spec.md §4.1. now is injected for testability.
func (s Signer) HandshakeHeaders(uri string, now time.Time) (dateHeader, authHeader string) {
	dateStr := now.UTC().Format(dateLayout)
	stringToSign := Scheme + "GET" + uri + "" + dateStr + ""

	mac := hmac.New(sha256.New, []byte(s.AppSecret))
	mac.Write([]byte(stringToSign))
	hexSig := hex.EncodeToString(mac.Sum(nil))

	dateHeader = dateStr
	authHeader = fmt.Sprintf("%s %s:%s", Scheme, s.AppID, hexSig)
	return dateHeader, authHeader
}

// EventContent builds the canonical string covered by a per-event
// signature, per spec.md §4.1.
func EventContent(accessKey, topic, nonce string, eventTime int64, encryptedData string) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s", accessKey, topic, nonce, eventTime, encryptedData)
}

// SignEvent computes the URL-safe, unpadded base64 HMAC-SHA256 of an
// event's canonical content. Exposed for tests that need to build a
// fixture signature; production code only verifies.
func (s Signer) SignEvent(topic, nonce string, eventTime int64, encryptedData string) string {
	content := EventContent(s.AppID, topic, nonce, eventTime, encryptedData)
	mac := hmac.New(sha256.New, []byte(s.AppSecret))
	mac.Write([]byte(content))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyEvent reports whether signature is the HMAC-SHA256 the vendor
// would have computed for this event, comparing in constant time.
// Mismatched lengths are rejected before any comparison runs, never by
// a short-circuiting equality.
func (s Signer) VerifyEvent(topic, nonce string, eventTime int64, encryptedData, signature string) bool {
	expected := s.SignEvent(topic, nonce, eventTime, encryptedData)
	if len(expected) != len(signature) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
