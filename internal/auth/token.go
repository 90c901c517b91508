package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the token lifetime applied when a caller does not
// request one explicitly.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken is the generic rejection surfaced to callers. The specific
// variants below all unwrap to it so handlers can map every token failure to
// the same response without leaking which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

var (
	// ErrTokenMalformed indicates the string is not a well-formed signed token.
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	// ErrTokenSignature indicates the signature does not match the claims and
	// the current signing secret. Tokens signed with a rotated secret land here.
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	// ErrTokenExpired indicates the embedded expiry has passed. The boundary
	// is inclusive: a token checked at exactly its expiry instant is rejected.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the signed token payload: the minimal identity set plus the
// registered issuance and expiry timestamps.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256-signed bearer tokens. The signing
// secret is fixed at construction and read-only afterwards.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the codec time source. Intended for tests.
func WithClock(fn func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// WithDefaultTTL overrides the default token lifetime.
func WithDefaultTTL(ttl time.Duration) CodecOption {
	return func(c *TokenCodec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewTokenCodec constructs a codec. An empty secret is a hard error; there is
// no fallback signing key.
func NewTokenCodec(secret, issuer string, opts ...CodecOption) (*TokenCodec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	c := &TokenCodec{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for the given user. A ttl <= 0 uses the codec default.
func (c *TokenCodec) Issue(user *User, ttl time.Duration) (string, time.Time, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return "", time.Time{}, errors.New("auth: user id is required")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	now := c.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UID:   user.ID,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry and returns the decoded claims. The
// returned errors distinguish malformed, signature and expiry failures for
// logging; all of them unwrap to ErrInvalidToken.
func (c *TokenCodec) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	parsed, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := c.validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *TokenCodec) validateClaims(claims *Claims) error {
	if c.issuer != "" && claims.Issuer != c.issuer {
		return ErrInvalidToken
	}
	if strings.TrimSpace(claims.UID) == "" {
		return ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	if !claims.Role.IsValid() {
		return ErrInvalidToken
	}
	// No clock-skew grace: now == expiry is already expired.
	if !c.now().Before(claims.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	return nil
}

// ExtractBearer parses an Authorization header value. Only the exact
// two-token "Bearer <token>" shape is accepted; other schemes, empty values
// and extra whitespace are rejected rather than tolerated.
func ExtractBearer(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
