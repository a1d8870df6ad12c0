package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const audienceInternal = "internal"

// Claims identify the calling service on internal routes.
type Claims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}

// Service mints and verifies the short-lived internal service credential.
type Service struct {
	secretKey     []byte
	serviceName   string
	tokenDuration time.Duration
	now           func() time.Time
}

func NewService(secretKey, serviceName string, tokenDuration time.Duration) *Service {
	return &Service{
		secretKey:     []byte(secretKey),
		serviceName:   serviceName,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

func (s *Service) GenerateToken() (string, error) {
	now := s.now()
	claims := Claims{
		Service: s.serviceName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.serviceName,
			Audience:  jwt.ClaimStrings{audienceInternal},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithAudience(audienceInternal), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Service == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
