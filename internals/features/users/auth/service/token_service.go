package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"lingoschool_backend/internals/constants"
	userModel "lingoschool_backend/internals/features/users/user/model"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

// Claims access token: {id, role, username, exp, iat}.
type Claims struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Principal memvalidasi isi claim; role di luar enum ditolak.
func (c Claims) Principal() (helperAuth.Principal, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil || id == uuid.Nil {
		return helperAuth.Principal{}, fmt.Errorf("invalid subject")
	}
	role, err := constants.ParseRole(c.Role)
	if err != nil {
		return helperAuth.Principal{}, err
	}
	return helperAuth.Principal{ID: id, Role: role, Username: c.Username}, nil
}

// TokenService menandatangani & memverifikasi access token HS256.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, Now: time.Now}
}

func (s *TokenService) Issue(u *userModel.UserModel) (string, time.Time, error) {
	now := s.Now()
	exp := now.Add(s.ttl)
	claims := Claims{
		ID:       u.ID.String(),
		Role:     string(u.Role),
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify: signature + exp (pakai jam s.Now supaya bisa dites).
func (s *TokenService) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty token")
	}
	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	var claims Claims
	if _, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil || !s.Now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("token expired")
	}
	return &claims, nil
}
