package backend

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/peoplesearch/domain"
)

type tokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs bearer tokens that reference a server-side session.
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for the session.
func (t *TokenIssuer) Issue(session *domain.Session) (string, error) {
	claims := tokenClaims{
		UserID: session.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    t.issuer,
			Subject:   session.AccountID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the token and returns the account and session it references.
func (t *TokenIssuer) Parse(token string) (accountID int64, sessionID string, err error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parser.SkipClaimsValidation = true

	var claims tokenClaims
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(t.now()) {
		return 0, "", domain.WrapError(domain.ErrCodeUnauthorized, "token expired", errors.New("expired"))
	}
	if claims.Issuer != t.issuer {
		return 0, "", domain.NewError(domain.ErrCodeUnauthorized, "invalid token issuer")
	}
	accountID, err = strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || claims.ID == "" {
		return 0, "", domain.NewError(domain.ErrCodeUnauthorized, "malformed token claims")
	}
	return accountID, claims.ID, nil
}
