package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenValidity is how long an issued check-in token stays redeemable.
const TokenValidity = 7 * 24 * time.Hour

// Token validation failure reasons. All are terminal; a token is never
// worth retrying.
const (
	ReasonValid            = "Valid"
	ReasonInvalidFormat    = "Invalid token format"
	ReasonExpired          = "Token expired"
	ReasonInvalidSignature = "Invalid signature"
)

// TokenService mints and verifies self-contained signed check-in tokens.
// Token layout: base64url("reservationId:guestId:expiryEpoch:signature")
// where signature = base64url(HMAC-SHA256 over "reservationId:guestId:expiryEpoch").
// No server-side session state is involved, so any entry point sharing the
// secret can validate a scan offline.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// TokenValidation is the outcome of validating a token.
type TokenValidation struct {
	Valid         bool   `json:"valid"`
	ReservationID uint   `json:"reservation_id,omitempty"`
	GuestID       uint   `json:"guest_id,omitempty"`
	Reason        string `json:"reason"`
}

// Issue mints a token for a reservation. guestID is 0 for the reservation
// holder and positive for an individual group member.
func (ts *TokenService) Issue(reservationID, guestID uint) string {
	expiry := ts.now().Add(TokenValidity).Unix()
	payload := fmt.Sprintf("%d:%d:%d", reservationID, guestID, expiry)
	signature := ts.sign(payload)
	return base64.URLEncoding.EncodeToString([]byte(payload + ":" + signature))
}

// CheckinURL builds the browser link encoded into QR codes.
func (ts *TokenService) CheckinURL(baseURL string, reservationID, guestID uint) string {
	return baseURL + "/checkin?token=" + ts.Issue(reservationID, guestID)
}

// Validate decodes and verifies a token. It never panics; any defect in the
// token comes back as Valid=false with a reason.
func (ts *TokenService) Validate(token string) TokenValidation {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return TokenValidation{Reason: ReasonInvalidFormat}
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		return TokenValidation{Reason: ReasonInvalidFormat}
	}

	reservationID, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return TokenValidation{Reason: ReasonInvalidFormat}
	}
	guestID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return TokenValidation{Reason: ReasonInvalidFormat}
	}
	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return TokenValidation{Reason: ReasonInvalidFormat}
	}

	if ts.now().Unix() > expiry {
		return TokenValidation{Reason: ReasonExpired}
	}

	payload := parts[0] + ":" + parts[1] + ":" + parts[2]
	expected := ts.sign(payload)
	if !hmac.Equal([]byte(expected), []byte(parts[3])) {
		return TokenValidation{Reason: ReasonInvalidSignature}
	}

	return TokenValidation{
		Valid:         true,
		ReservationID: uint(reservationID),
		GuestID:       uint(guestID),
		Reason:        ReasonValid,
	}
}

func (ts *TokenService) sign(payload string) string {
	mac := hmac.New(sha256.New, ts.secret)
	mac.Write([]byte(payload))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}
