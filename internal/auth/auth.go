// Package auth issues and validates the JWT pair used by the mobile client
// and the admin panel.
package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Roles known to the system. RoleExtraWaiter is special: it disables the
// AI identity/dress-code validation during clock-in.
const (
	RoleAdmin       = "ADMIN"
	RoleWaiter      = "WAITER"
	RoleExtraWaiter = "EXTRA_WAITER"
	RoleKitchen     = "KITCHEN"
	RoleSecurity    = "SECURITY"
	RoleOther       = "OTHER"
	RoleDashboard   = "DASHBOARD"
)

type ctxKey int

// Key is used to store/retrieve Claims in a context.Context.
const Key ctxKey = 1

type Claims struct {
	UserId int    `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.StandardClaims
}

// Authorized reports whether the claim's role is one of the accepted roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

type Auth struct {
	key []byte

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuth(jwtKey string) *Auth {
	return &Auth{
		key:        []byte(jwtKey),
		accessTTL:  12 * time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

// GenerateTokens returns an access/refresh token pair for the user.
func (a *Auth) GenerateTokens(userID int, role string) (string, string, error) {
	access, err := a.sign(Claims{
		UserId: userID,
		Role:   role,
		Type:   "access",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(a.accessTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	if err != nil {
		return "", "", errors.Wrap(err, "signing access token")
	}

	refresh, err := a.sign(Claims{
		UserId: userID,
		Role:   role,
		Type:   "refresh",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(a.refreshTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	if err != nil {
		return "", "", errors.Wrap(err, "signing refresh token")
	}

	return access, refresh, nil
}

func (a *Auth) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.key)
}

// ValidateToken parses the token and verifies it was signed by us.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	return claims, nil
}

// ValidateRefreshToken additionally checks the token type so an access token
// cannot be replayed as a refresh token.
func (a *Auth) ValidateRefreshToken(tokenStr string) (Claims, error) {
	claims, err := a.ValidateToken(tokenStr)
	if err != nil {
		return Claims{}, err
	}
	if claims.Type != "refresh" {
		return Claims{}, errors.New("not a refresh token")
	}
	return claims, nil
}
