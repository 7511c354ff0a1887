package facebookimpl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/internal/ratelimit"
	"github.com/orgball2608/fb-repost-bot/pkg/config"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/fx"
)

const (
	breakerName             = "graph-api"
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	maxErrorBody            = 4096
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type FacebookImpl struct {
	baseURL *url.URL
	http    *http.Client
	limiter ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  logger.Logger
}

var _ facebook.Client = (*FacebookImpl)(nil)

func New(opts Opts) (*FacebookImpl, error) {
	fb := opts.Config.Facebook
	return NewWithClient(
		fb.APIURL,
		&http.Client{Timeout: fb.Timeout},
		ratelimit.NewPerSecond(fb.RequestsPerSecond, fb.Burst),
		opts.Logger,
	)
}

func NewWithClient(apiURL string, httpClient *http.Client, limiter ratelimit.Limiter, log logger.Logger) (*FacebookImpl, error) {
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid graph api url %q: %w", apiURL, err)
	}

	f := &FacebookImpl{
		baseURL: base,
		http:    httpClient,
		limiter: limiter,
		logger:  log.WithComponent("GraphAPI"),
	}

	f.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    breakerName,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		// API errors are answers from a healthy service; only transport
		// failures and 5xx responses count against the breaker.
		IsSuccessful: func(err error) bool {
			var apiErr *facebook.Error
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return f, nil
}

// graphError is the {"error": {...}} envelope the Graph API uses for failures.
type graphError struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// graphID accepts ids encoded either as JSON strings or numbers.
type graphID int64

func (id *graphID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid graph id %s: %w", string(data), err)
	}
	*id = graphID(v)
	return nil
}

func (f *FacebookImpl) endpoint(path string, query url.Values) string {
	u := f.baseURL.ResolveReference(&url.URL{Path: path})
	u.RawQuery = query.Encode()
	return u.String()
}

func (f *FacebookImpl) get(ctx context.Context, key int64, path string, query url.Values, token facebook.Token, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", facebook.ErrPlatform, err)
	}
	authorize(req, token)
	return f.send(ctx, key, path, req, out)
}

func (f *FacebookImpl) post(ctx context.Context, key int64, path string, form url.Values, token facebook.Token, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", facebook.ErrPlatform, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	authorize(req, token)
	return f.send(ctx, key, path, req, out)
}

// authorize sends token as a bearer credential so it never appears in a URL.
func authorize(req *http.Request, token facebook.Token) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+string(token))
	}
}

// redactURL strips the query from the URL carried by transport errors.
// debug_token and CDN links put credentials there.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			if u.RawQuery != "" {
				u.RawQuery = "redacted"
			}
			u.User = nil
			ue.URL = u.String()
		} else {
			ue.URL = "redacted"
		}
	}
	return err
}

func (f *FacebookImpl) send(ctx context.Context, key int64, path string, req *http.Request, out any) error {
	if err := f.limiter.Wait(ctx, key); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", facebook.ErrPlatform, err)
	}

	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.roundTrip(req)
	})
	if err != nil {
		if errors.Is(err, facebook.ErrPlatform) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %w", facebook.ErrPlatform, req.Method, path, err)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", facebook.ErrPlatform, path, err)
	}
	return nil
}

// roundTrip performs the request and turns Graph error envelopes into
// *facebook.Error, whatever the HTTP status.
func (f *FacebookImpl) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, redactURL(err)
	}
	defer safeClose(resp.Body, f.logger)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope graphError
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		return nil, &facebook.Error{
			Type:       envelope.Error.Type,
			Message:    envelope.Error.Message,
			Code:       envelope.Error.Code,
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &facebook.Error{
			Type:       "HTTPError",
			Message:    fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(body)),
			StatusCode: resp.StatusCode,
		}
	}

	return body, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(bytes.TrimSpace(body))
}

// safeClose safely closes an io.ReadCloser and logs any errors
func safeClose(closer io.ReadCloser, logger logger.Logger) {
	if err := closer.Close(); err != nil {
		logger.Error("Error closing response body", "error", err)
	}
}
