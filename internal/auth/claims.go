package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields of an ID token the client cares about
type Claims struct {
	UID       string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ParseClaims reads the claims of an ID token without verifying its
// signature. The backend verifies tokens.
func ParseClaims(idToken string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse ID token: %w", err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenMalformed
	}

	c := &Claims{}
	if uid, ok := mc["user_id"].(string); ok && uid != "" {
		c.UID = uid
	} else if sub, err := mc.GetSubject(); err == nil {
		c.UID = sub
	}
	if c.UID == "" {
		return nil, errors.New("ID token has no subject")
	}
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
