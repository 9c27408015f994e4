package anubis

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/platform/resilience"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

const (
	adminRole              = "admin"
	defaultPrincipalTTL    = 30 * time.Second
	defaultPrincipalMaxLen = 10000
	maxIntrospectBodyBytes = 1 << 20
)

var errAnubisTransient = errors.New("anubis transient failure")

// Client resolves bearer tokens to principals through Anubis token introspection.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	breaker       *resilience.CircuitBreaker
	cache         *inMemoryPrincipalCache
	logger        *logging.Logger
}

type Option func(*Client)

// WithPrincipalCache caches active principals per token hash. A ttl <= 0 disables caching.
func WithPrincipalCache(ttl time.Duration, maxEntries int) Option {
	return func(c *Client) {
		c.cache = newInMemoryPrincipalCache(ttl, maxEntries)
	}
}

func NewClient(
	httpClient *http.Client,
	baseURL, introspectPath, adminKey string,
	breakerCfg resilience.CircuitBreakerConfig,
	logger *logging.Logger,
	opts ...Option,
) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Second}
	}

	c := &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		adminKey:      strings.TrimSpace(adminKey),
		breaker:       resilience.NewCircuitBreaker(breakerCfg),
		cache:         newInMemoryPrincipalCache(defaultPrincipalTTL, defaultPrincipalMaxLen),
		logger:        logger.Named("anubis"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker.OnStateChange(func(from, to resilience.CircuitState) {
		c.logger.Warn("anubis circuit state changed", "from", string(from), "to", string(to))
	})
	return c
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, errors.Wrap(usecase.ErrUnauthorized, "token is required")
	}

	cacheKey := hashToken(token)
	if principal, ok := c.cache.Get(cacheKey); ok {
		return principal, nil
	}

	var principal user.Principal
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		principal, err = c.introspect(ctx, token)
		return err
	}, isCircuitFailure)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return user.Principal{}, errors.Mark(errors.Wrap(err, "anubis introspection"), usecase.ErrDependencyUnavailable)
		}
		return user.Principal{}, err
	}

	c.cache.Set(cacheKey, principal)
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, errors.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, errors.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, transient(errors.Wrap(err, "request introspection to anubis"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIntrospectBodyBytes))
	if err != nil {
		return user.Principal{}, transient(errors.Wrap(err, "read introspect response"))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, errors.Wrap(usecase.ErrUnauthorized, "introspection denied")
	case resp.StatusCode == http.StatusForbidden:
		// Anubis rejected our admin key, not the caller's token.
		c.logger.ErrorContext(ctx, "anubis rejected admin key", "status_code", resp.StatusCode)
		return user.Principal{}, errors.Mark(errors.New("anubis introspection forbidden"), usecase.ErrDependencyUnavailable)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, transient(errors.Newf("anubis introspection failed with status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, errors.Mark(errors.Newf("anubis introspection failed with status %d", resp.StatusCode), usecase.ErrDependencyUnavailable)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, errors.Mark(errors.Wrap(err, "unmarshal introspect response"), usecase.ErrDependencyUnavailable)
	}
	if !decoded.Active {
		return user.Principal{}, errors.Wrap(usecase.ErrUnauthorized, "inactive token")
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, errors.Mark(errors.New("invalid introspect response: user_id is empty"), usecase.ErrDependencyUnavailable)
	}

	return user.Principal{
		UserID:  decoded.UserID,
		Email:   decoded.Email,
		IsAdmin: hasRole(decoded.Roles, adminRole),
	}, nil
}

func transient(err error) error {
	return errors.Mark(errors.Mark(err, errAnubisTransient), usecase.ErrDependencyUnavailable)
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool     `json:"active"`
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}
