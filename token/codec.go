// Package token creates and validates the access/refresh token pair. Access
// tokens are short-lived signed JWTs verifiable without a database round-trip;
// refresh tokens are opaque random strings bound to a user by the caller.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/docuflow/go-auth-service/internal/config"
	"github.com/docuflow/go-auth-service/users"
)

const refreshTokenLength = 32 // bytes of entropy, 256 bits

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the access-token claim set.
type Claims struct {
	jwt.RegisteredClaims
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Role       string `json:"role,omitempty"`
	FullName   string `json:"FullName,omitempty"`
	IsActive   string `json:"IsActive,omitempty"`
}

// Principal is the identity extracted from a validated access token.
type Principal struct {
	UserID     string
	Email      string
	GivenName  string
	FamilyName string
	FullName   string
	Role       users.RoleType
	IsActive   bool
	TokenID    string
}

// Codec issues and validates tokens with static configuration loaded once at
// startup.
type Codec struct {
	signer            Signer
	issuer            string
	audience          string
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the time source (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(cfg config.JWTConfig, options ...CodecOption) *Codec {
	c := &Codec{
		signer:            NewHMACSigner(cfg.GetJWTKey()),
		issuer:            cfg.GetJWTIssuer(),
		audience:          cfg.GetJWTAudience(),
		accessTokenExpiry: cfg.GetAccessTokenExpiry(),
		nowFunc:           time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// IssueAccessToken builds and signs the claim set for user. Expiry is
// now + the configured access-token lifetime.
func (c *Codec) IssueAccessToken(user *users.User) (string, error) {
	now := c.nowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTokenExpiry)),
			ID:        uuid.New().String(),
		},
		Name:       user.Email,
		Email:      user.Email,
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		Role:       string(user.Role),
		FullName:   user.FullName(),
		IsActive:   strconv.FormatBool(user.Active),
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Codec.IssueAccessToken] sign")
	}
	return signed, nil
}

// NewRefreshToken returns a fresh opaque refresh token. It has no relationship
// to any user until the caller stores it on a credential record.
func (c *Codec) NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "[Codec.NewRefreshToken] rand.Read")
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ValidateAccessToken fully validates raw, including expiry. Expired-but-
// otherwise-valid tokens fail with ErrTokenExpired; everything else fails
// with ErrInvalidToken.
func (c *Codec) ValidateAccessToken(raw string) (*Principal, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, c.signer.GetVerificationKey,
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithTimeFunc(c.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	return principalFromClaims(claims), nil
}

// PrincipalFromExpiredToken validates signature, issuer, audience and token
// structure but skips expiry. This is how an expired access token identifies
// whose stored refresh token should apply during a refresh.
func (c *Codec) PrincipalFromExpiredToken(raw string) (*Principal, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, c.signer.GetVerificationKey,
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}

	// Claims validation was skipped wholesale to ignore expiry, so issuer and
	// audience are checked by hand.
	if claims.Issuer != c.issuer {
		return nil, ErrInvalidToken
	}
	if !claimsAudienceContains(claims.Audience, c.audience) {
		return nil, ErrInvalidToken
	}

	return principalFromClaims(claims), nil
}

func claimsAudienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func principalFromClaims(claims *Claims) *Principal {
	active, _ := strconv.ParseBool(claims.IsActive)
	return &Principal{
		UserID:     claims.Subject,
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		FullName:   claims.FullName,
		Role:       users.RoleType(claims.Role),
		IsActive:   active,
		TokenID:    claims.ID,
	}
}
