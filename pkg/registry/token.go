package registry

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Token lifetime handling. Registries advertise a lifetime in expires_in;
// the margin keeps us from presenting a token in its final seconds.
const (
	defaultTokenTTL = 5 * time.Minute
	expiryMargin    = 30 * time.Second
)

// bearerToken is an anonymous pull token with its refresh deadline.
type bearerToken struct {
	value   string
	expires time.Time
}

// tokenCache stores anonymous bearer tokens keyed by host and repository.
// The mutex is held across a refresh, so exactly one goroutine fetches a
// missing token while the rest wait for its result.
type tokenCache struct {
	mu     sync.Mutex
	tokens map[string]bearerToken
}

func newTokenCache() *tokenCache {
	return &tokenCache{tokens: make(map[string]bearerToken)}
}

// token returns the cached token for key, fetching a fresh one when the
// cache has none or the cached one has reached its refresh deadline.
func (c *tokenCache) token(ctx context.Context, key string, fetch func(context.Context) (string, time.Duration, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok, ok := c.tokens[key]; ok && time.Now().Before(tok.expires) {
		return tok.value, nil
	}

	value, ttl, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	lifetime := ttl - expiryMargin
	if lifetime <= 0 {
		lifetime = ttl
	}
	c.tokens[key] = bearerToken{value: value, expires: time.Now().Add(lifetime)}
	return value, nil
}

// invalidate drops the cached token for key, but only while it still is
// the one that just failed. A concurrent refresh may already have replaced
// it, and dropping the replacement would force a pointless round trip.
func (c *tokenCache) invalidate(key, stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok, ok := c.tokens[key]; ok && tok.value == stale {
		delete(c.tokens, key)
	}
}

// authChallenge is a parsed WWW-Authenticate Bearer challenge from a
// registry's /v2/ endpoint.
type authChallenge struct {
	realm   string
	service string
}

// parseBearerChallenge extracts realm and service from a challenge header
// such as:
//
//	Bearer realm="https://auth.docker.io/token",service="registry.docker.io"
func parseBearerChallenge(header string) (authChallenge, bool) {
	scheme, params, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return authChallenge{}, false
	}

	var ch authChallenge
	for _, part := range strings.Split(params, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch strings.ToLower(key) {
		case "realm":
			ch.realm = value
		case "service":
			ch.service = value
		}
	}

	if ch.realm == "" {
		return authChallenge{}, false
	}
	return ch, true
}
