package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"resumehub/internal/model"
)

const (
	PurposeAccess = "access"
	PurposeReset  = "password-reset"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token not valid for this use")
)

// Claims represents JWT payload.
type Claims struct {
	AccountID   string     `json:"id"`
	Role        model.Role `json:"role,omitempty"`
	Purpose     string     `json:"purpose"`
	Fingerprint string     `json:"pwv,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens for one issuer and key.
type Signer struct {
	issuer string
	key    []byte
	now    func() time.Time
}

func NewSigner(issuer, key string) *Signer {
	return &Signer{issuer: issuer, key: []byte(key), now: time.Now}
}

// IssueAccess signs a login token carrying the account id and role.
func (s *Signer) IssueAccess(accountID string, role model.Role, ttl time.Duration) (string, time.Time, error) {
	return s.issue(Claims{AccountID: accountID, Role: role, Purpose: PurposeAccess}, ttl)
}

// IssueReset signs a password-reset token bound to the current password hash,
// so it stops verifying once the password has changed.
func (s *Signer) IssueReset(accountID, passwordHash string, ttl time.Duration) (string, time.Time, error) {
	return s.issue(Claims{AccountID: accountID, Purpose: PurposeReset, Fingerprint: Fingerprint(passwordHash)}, ttl)
}

func (s *Signer) issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   claims.AccountID,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates signature, expiry and issuer and returns claims.
func (s *Signer) Parse(tokenStr string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.AccountID == "" {
		return Claims{}, ErrInvalidToken
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}

// ParseAccess parses a login token.
func (s *Signer) ParseAccess(tokenStr string) (Claims, error) {
	return s.parsePurpose(tokenStr, PurposeAccess)
}

// ParseReset parses a password-reset token.
func (s *Signer) ParseReset(tokenStr string) (Claims, error) {
	return s.parsePurpose(tokenStr, PurposeReset)
}

func (s *Signer) parsePurpose(tokenStr, purpose string) (Claims, error) {
	claims, err := s.Parse(tokenStr)
	if err != nil {
		return Claims{}, err
	}
	if claims.Purpose != purpose {
		return Claims{}, ErrWrongPurpose
	}
	return claims, nil
}

// Fingerprint is a short digest of a password hash for reset-token binding.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
