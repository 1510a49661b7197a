package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lucas-albers-lz4/uptag/pkg/image"
	log "github.com/lucas-albers-lz4/uptag/pkg/log"
	"github.com/lucas-albers-lz4/uptag/pkg/version"
)

// Defaults for client construction.
const (
	// DefaultAPIHost serves the v2 API for images that name Docker Hub.
	DefaultAPIHost = "registry-1.docker.io"
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultPageSize is the page size requested from the tags endpoint.
	DefaultPageSize = 100
	// DefaultRequestsPerSecond caps the sustained request rate per host.
	DefaultRequestsPerSecond = 10
)

// TagSource lists the tags a repository currently offers. Client is the
// real implementation; checks substitute a stub in tests.
type TagSource interface {
	FetchTags(ctx context.Context, ref *image.Reference) ([]string, error)
}

// Client talks to container registries over the v2 HTTP API. It caches
// auth challenges per host and anonymous tokens per repository, limits the
// request rate per host, and retries transient failures. Safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	pageSize   int
	retry      *RetryPolicy
	rps        rate.Limit
	plainHTTP  bool

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	// challenges caches the outcome of probing a host's /v2/ endpoint. A
	// nil entry means the host serves anonymous pulls without tokens.
	challengeMu sync.Mutex
	challenges  map[string]*authChallenge

	tokens *tokenCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithPageSize sets how many tags are requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		c.pageSize = n
	}
}

// WithRequestsPerSecond caps the sustained per-host request rate.
func WithRequestsPerSecond(n float64) Option {
	return func(c *Client) {
		c.rps = rate.Limit(n)
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p *RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithPlainHTTP talks http instead of https, for registries without TLS
// and for tests.
func WithPlainHTTP(enabled bool) Option {
	return func(c *Client) {
		c.plainHTTP = enabled
	}
}

// NewClient creates a registry client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		pageSize:   DefaultPageSize,
		retry:      NewRetryPolicy(),
		rps:        DefaultRequestsPerSecond,
		limiters:   make(map[string]*rate.Limiter),
		challenges: make(map[string]*authChallenge),
		tokens:     newTokenCache(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// resolveAPIHost maps a reference's registry to the host serving its v2
// API. Docker Hub images name docker.io, whose API lives elsewhere; every
// other registry serves the API on its own host.
func resolveAPIHost(registry string) string {
	switch registry {
	case "", image.DefaultRegistry, image.LegacyDefaultRegistry:
		return DefaultAPIHost
	}
	return registry
}

// tagList is the payload of the v2 tags endpoint.
type tagList struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// FetchTags lists every tag the registry offers for ref's repository,
// walking the paginated tags endpoint until it is exhausted. Tags are
// returned in registry order.
func (c *Client) FetchTags(ctx context.Context, ref *image.Reference) ([]string, error) {
	host := resolveAPIHost(ref.Registry)
	pageURL := fmt.Sprintf("%s://%s/v2/%s/tags/list?n=%d", c.scheme(), host, ref.Repository, c.pageSize)

	var tags []string
	for pageURL != "" {
		var page []string
		var next string
		err := c.retry.Execute(ctx, "fetch tags "+ref.Repository, func() error {
			var fetchErr error
			page, next, fetchErr = c.fetchTagPage(ctx, host, ref.Repository, pageURL)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		tags = append(tags, page...)
		pageURL = next
	}

	log.Debug("fetched tags", "host", host, "repository", ref.Repository, "count", len(tags))
	return tags, nil
}

// fetchTagPage requests one page of the tags list. It returns the page's
// tags and the absolute URL of the next page, empty when this was the
// last one.
func (c *Client) fetchTagPage(ctx context.Context, host, repo, pageURL string) ([]string, string, error) {
	resp, err := c.doAuthorized(ctx, host, repo, pageURL)
	if err != nil {
		return nil, "", err
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, "", &RateLimitedError{Host: host, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case http.StatusNotFound:
		return nil, "", &ProtocolError{Host: host, Status: resp.StatusCode, Reason: "repository " + repo + " not found"}
	default:
		return nil, "", &ProtocolError{Host: host, Status: resp.StatusCode, Reason: "tags request failed"}
	}

	var payload tagList
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", &ProtocolError{Host: host, Reason: fmt.Sprintf("decoding tags response: %v", err)}
	}

	next, err := nextPageURL(pageURL, resp.Header.Get("Link"))
	if err != nil {
		return nil, "", &ProtocolError{Host: host, Reason: err.Error()}
	}
	return payload.Tags, next, nil
}

// doAuthorized performs a GET with the repository's anonymous token. A 401
// forces one token refresh, covering both an expired token and a stale
// challenge; a second 401 means anonymous access is not on offer.
func (c *Client) doAuthorized(ctx context.Context, host, repo, rawURL string) (*http.Response, error) {
	token, err := c.tokenFor(ctx, host, repo)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, rawURL, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drainAndClose(resp.Body)

	c.forgetChallenge(host)
	c.tokens.invalidate(tokenKey(host, repo), token)

	token, err = c.tokenFor(ctx, host, repo)
	if err != nil {
		return nil, err
	}
	resp, err = c.do(ctx, rawURL, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drainAndClose(resp.Body)
		return nil, &AuthError{Host: host, Repository: repo, Reason: "registry rejected a freshly issued token"}
	}
	return resp, nil
}

// do performs a single rate-limited GET. Transport failures come back as
// NetworkError unless the context was canceled.
func (c *Client) do(ctx context.Context, rawURL, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := c.limiterFor(req.URL.Host).Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, WrapNetworkError(req.URL.Host, err)
	}
	return resp, nil
}

// tokenFor returns the anonymous pull token for repo on host, or an empty
// string when the host needs none.
func (c *Client) tokenFor(ctx context.Context, host, repo string) (string, error) {
	ch, err := c.challengeFor(ctx, host)
	if err != nil {
		return "", err
	}
	if ch == nil {
		return "", nil
	}

	return c.tokens.token(ctx, tokenKey(host, repo), func(ctx context.Context) (string, time.Duration, error) {
		return c.fetchToken(ctx, host, repo, ch)
	})
}

func tokenKey(host, repo string) string {
	return host + "/" + repo
}

// challengeFor returns the host's cached auth challenge, probing /v2/ on
// first contact.
func (c *Client) challengeFor(ctx context.Context, host string) (*authChallenge, error) {
	c.challengeMu.Lock()
	defer c.challengeMu.Unlock()

	if ch, ok := c.challenges[host]; ok {
		return ch, nil
	}

	probeURL := fmt.Sprintf("%s://%s/v2/", c.scheme(), host)
	resp, err := c.do(ctx, probeURL, "")
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		c.challenges[host] = nil
		return nil, nil
	case http.StatusUnauthorized:
		ch, ok := parseBearerChallenge(resp.Header.Get("WWW-Authenticate"))
		if !ok {
			return nil, &AuthError{Host: host, Reason: "no bearer challenge in 401 response"}
		}
		log.Debug("discovered auth challenge", "host", host, "realm", ch.realm, "service", ch.service)
		c.challenges[host] = &ch
		return &ch, nil
	case http.StatusTooManyRequests:
		return nil, &RateLimitedError{Host: host, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return nil, &ProtocolError{Host: host, Status: resp.StatusCode, Reason: "unexpected response probing /v2/"}
	}
}

// forgetChallenge drops the cached challenge for host so the next request
// probes again.
func (c *Client) forgetChallenge(host string) {
	c.challengeMu.Lock()
	defer c.challengeMu.Unlock()
	delete(c.challenges, host)
}

// tokenResponse is the payload of a token endpoint. Some registries use
// token, others access_token.
type tokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// fetchToken asks the challenge's realm for an anonymous pull token scoped
// to repo.
func (c *Client) fetchToken(ctx context.Context, host, repo string, ch *authChallenge) (string, time.Duration, error) {
	realm, err := url.Parse(ch.realm)
	if err != nil {
		return "", 0, &AuthError{Host: host, Repository: repo, Reason: fmt.Sprintf("invalid token realm %q", ch.realm)}
	}
	q := realm.Query()
	if ch.service != "" {
		q.Set("service", ch.service)
	}
	q.Set("scope", "repository:"+repo+":pull")
	realm.RawQuery = q.Encode()

	resp, err := c.do(ctx, realm.String(), "")
	if err != nil {
		return "", 0, err
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", 0, &RateLimitedError{Host: realm.Host, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return "", 0, &AuthError{Host: host, Repository: repo, Reason: fmt.Sprintf("token endpoint answered %d", resp.StatusCode)}
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, &AuthError{Host: host, Repository: repo, Reason: fmt.Sprintf("decoding token response: %v", err)}
	}
	token := payload.Token
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" {
		return "", 0, &AuthError{Host: host, Repository: repo, Reason: "token endpoint returned no token"}
	}

	log.Debug("fetched anonymous token", "host", host, "repository", repo, "expires_in", payload.ExpiresIn)
	return token, time.Duration(payload.ExpiresIn) * time.Second, nil
}

// limiterFor returns the rate limiter for a host, creating it on first
// use.
func (c *Client) limiterFor(host string) *rate.Limiter {
	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()

	lim, ok := c.limiters[host]
	if !ok {
		burst := int(c.rps)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(c.rps, burst)
		c.limiters[host] = lim
	}
	return lim
}

func (c *Client) scheme() string {
	if c.plainHTTP {
		return "http"
	}
	return "https"
}

// parseRetryAfter reads a Retry-After header, either delta-seconds or an
// HTTP date.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// nextPageURL resolves the Link header's rel="next" target against the
// page that carried it. Registries send either absolute URLs or paths.
func nextPageURL(current, linkHeader string) (string, error) {
	if linkHeader == "" {
		return "", nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("parsing page url %q: %v", current, err)
	}

	for _, link := range strings.Split(linkHeader, ",") {
		target, params, found := strings.Cut(strings.TrimSpace(link), ";")
		if !found {
			continue
		}
		if !strings.Contains(strings.ReplaceAll(params, `"`, ""), "rel=next") {
			continue
		}
		target = strings.TrimSpace(target)
		target = strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
		next, err := url.Parse(target)
		if err != nil {
			return "", fmt.Errorf("parsing Link target %q: %v", target, err)
		}
		return base.ResolveReference(next).String(), nil
	}
	return "", nil
}

// drainAndClose discards the rest of a response body so the underlying
// connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
