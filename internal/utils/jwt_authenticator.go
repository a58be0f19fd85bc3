package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// AuthenticatedUser is the caller identity carried by a validated bearer token
type AuthenticatedUser struct {
	Sub      string   `json:"sub"`
	Iss      string   `json:"iss"`
	Aud      []string `json:"aud"`
	ClientId string   `json:"client_id"`
	Exp      int64    `json:"exp"`
	Iat      int64    `json:"iat"`
	Roles    []string `json:"roles"`
	Scopes   []string `json:"scopes"`
}

// JwtAuthenticator validates RS256 tokens against a JWKS endpoint
type JwtAuthenticator struct {
	JwksUri string

	cacheTTL  time.Duration
	mu        sync.Mutex
	keys      jwk.Set
	fetchedAt time.Time
}

// NewJwtAuthenticator creates a new JwtAuthenticator. Keys are cached for five minutes.
func NewJwtAuthenticator(jwksUri string) *JwtAuthenticator {
	return &JwtAuthenticator{
		JwksUri:  jwksUri,
		cacheTTL: 5 * time.Minute,
	}
}

// ValidateToken verifies the signature and time claims of token and returns its user
func (a *JwtAuthenticator) ValidateToken(token string) (*AuthenticatedUser, error) {
	if a.JwksUri == "" {
		return nil, errors.New("JWKS URI not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		return a.fetchKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	return a.mapClaimsToUser(claims)
}

// fetchKey returns the raw public key for kid, refreshing the key set when
// the cache has expired or does not know kid.
func (a *JwtAuthenticator) fetchKey(ctx context.Context, kid string) (interface{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.keys == nil || time.Since(a.fetchedAt) > a.cacheTTL || !hasKey(a.keys, kid) {
		set, err := jwk.Fetch(ctx, a.JwksUri)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		a.keys = set
		a.fetchedAt = time.Now()
	}

	key, ok := a.lookup(kid)
	if !ok {
		return nil, fmt.Errorf("key %q not found in JWKS", kid)
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode key %q: %w", kid, err)
	}
	return raw, nil
}

func (a *JwtAuthenticator) lookup(kid string) (jwk.Key, bool) {
	if kid != "" {
		return a.keys.LookupKeyID(kid)
	}
	if a.keys.Len() == 1 {
		return a.keys.Key(0)
	}
	return nil, false
}

func hasKey(set jwk.Set, kid string) bool {
	if kid == "" {
		return set.Len() > 0
	}
	_, ok := set.LookupKeyID(kid)
	return ok
}

func (a *JwtAuthenticator) mapClaimsToUser(claims map[string]interface{}) (*AuthenticatedUser, error) {
	user := &AuthenticatedUser{
		Sub:      stringClaim(claims, "sub"),
		Iss:      stringClaim(claims, "iss"),
		ClientId: stringClaim(claims, "client_id"),
		Exp:      intClaim(claims, "exp"),
		Iat:      intClaim(claims, "iat"),
		Aud:      stringListClaim(claims, "aud"),
		Roles:    stringListClaim(claims, "roles"),
		Scopes:   stringListClaim(claims, "scopes"),
	}
	return user, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}

func intClaim(claims map[string]interface{}, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func stringListClaim(claims map[string]interface{}, key string) []string {
	switch v := claims[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

type authenticatedUserKey struct{}

// WithAuthenticatedUser stores user on ctx for tool handlers
func WithAuthenticatedUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authenticatedUserKey{}, user)
}

// GetAuthenticatedUser returns the user stored by WithAuthenticatedUser
func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(authenticatedUserKey{}).(*AuthenticatedUser)
	return user, ok && user != nil
}

// UserID returns the subject of the authenticated user on ctx, if any
func UserID(ctx context.Context) *string {
	user, ok := GetAuthenticatedUser(ctx)
	if !ok || user.Sub == "" {
		return nil
	}
	sub := user.Sub
	return &sub
}
