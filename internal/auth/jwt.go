package auth

import (
	"errors"
	"time"

	"phonecase/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Manager struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &Manager{
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
		audience:  cfg.JWTAudience,
		accessTTL: cfg.AccessTokenTTL,
	}, nil
}

/* ===================== ISSUE TOKEN ===================== */

// Issue signs an access token for subject with role, valid from now for the configured TTL.
func (m *Manager) Issue(now time.Time, subject, role string) (string, error) {
	if subject == "" || role == "" {
		return "", errors.New("subject and role are required")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

/* ===================== VERIFY TOKEN ===================== */

func (m *Manager) Verify(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	if err := jwt.NewValidator(opts...).Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return Claims{}, errors.Join(ErrInvalidToken, errors.New("sub missing"))
	}
	if claims.Role == "" {
		return Claims{}, errors.Join(ErrInvalidToken, errors.New("role missing"))
	}

	return claims, nil
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
