package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"bank-loan-service/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWT issues and parses HS256 access tokens carrying the caller identity.
type JWT struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (j *JWT) Issue(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:  strconv.FormatUint(u.ID, 10),
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

func (j *JWT) Parse(tokenStr string) (user.Caller, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return user.Caller{}, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return user.Caller{}, errors.New("invalid token")
	}
	uid, err := strconv.ParseUint(c.UID, 10, 64)
	if err != nil {
		return user.Caller{}, fmt.Errorf("invalid uid claim: %w", err)
	}
	role, ok := user.ParseRole(c.Role)
	if !ok {
		return user.Caller{}, fmt.Errorf("invalid role claim %q", c.Role)
	}
	return user.Caller{ID: uid, Role: role}, nil
}
