package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be split or its payload decoded.
var ErrMalformedToken = errors.New("malformed token")

// Identity is the user identity carried in a token payload.
type Identity struct {
	Subject   string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// Decoder extracts [Identity] from tokens without verifying their signature.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder returns a Decoder. It holds no keys.
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode reads the sub, name and role claims. Missing or non-string claims decode
// as empty strings; only a structurally broken token is an error.
func (d *Decoder) Decode(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty", ErrMalformedToken)
	}

	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	id := Identity{
		Subject: stringClaim(claims, "sub"),
		Name:    stringClaim(claims, "name"),
		Role:    stringClaim(claims, "role"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return v
}
