// Package auth issues and checks registration receipts: HS256 JWTs that
// prove the bearer owns an accepted username.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "anonid"

// ReceiptClaims are the claims carried by a receipt. The username is the JWT
// subject and the registration ID is the JWT ID.
type ReceiptClaims struct {
	jwt.RegisteredClaims
	AuthAddress string `json:"auth_address"`
	Difficulty  uint   `json:"difficulty"`
	Algorithm   string `json:"algorithm"`
}

// Receipt is the subset of a registration that a receipt vouches for.
type Receipt struct {
	RegistrationID string
	Username       string
	AuthAddress    string
	Difficulty     uint
	Algorithm      string
}

// IssueReceipt signs r with secretKey; it expires after validity.
func IssueReceipt(r Receipt, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ReceiptClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   r.Username,
			ID:        r.RegistrationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		AuthAddress: r.AuthAddress,
		Difficulty:  r.Difficulty,
		Algorithm:   r.Algorithm,
	})

	return token.SignedString(secretKey)
}

// ParseReceipt validates tokenString and returns what it vouches for.
// Expired receipts yield common.ErrTokenExpired, anything else that fails
// validation yields common.ErrInvalidToken.
func ParseReceipt(tokenString string, secretKey []byte) (*Receipt, error) {
	claims := &ReceiptClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return &Receipt{
		RegistrationID: claims.ID,
		Username:       claims.Subject,
		AuthAddress:    claims.AuthAddress,
		Difficulty:     claims.Difficulty,
		Algorithm:      claims.Algorithm,
	}, nil
}
