package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lemonhouse/storefront/pkg/config"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout              = 15 * time.Second
	responseBodyReadLimit int64 = 1024
)

// Collection names a remote record collection.
type Collection string

const (
	Products  Collection = "products"
	Users     Collection = "users"
	Addresses Collection = "addresses"
	Orders    Collection = "orders"
	Feedback  Collection = "feedback"
)

const (
	opQuery  = "query"
	opList   = "list"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Gateway is the record surface consumed by the domain services.
type Gateway interface {
	Query(ctx context.Context, col Collection, field, value string) ([]Row, error)
	List(ctx context.Context, col Collection) ([]Row, error)
	Create(ctx context.Context, col Collection, row Row) error
	Update(ctx context.Context, col Collection, keyField, keyValue string, row Row) error
	Delete(ctx context.Context, col Collection, keyField, keyValue string) error
}

// Client talks to the spreadsheet-backed REST API.
type Client struct {
	httpClient *http.Client
	endpoints  map[Collection]string
	token      string
	limiter    *rate.Limiter
	metrics    *metrics.GatewayMetrics
	logg       *logger.Logger
}

var _ Gateway = (*Client)(nil)

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger enables failure logging.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithMetrics records per-call durations and failures.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLimiter replaces the limiter built from config. A nil limiter disables throttling.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient validates the collection endpoints and builds the client.
func NewClient(cfg config.SheetsConfig, opts ...Option) (*Client, error) {
	endpoints := map[Collection]string{
		Products:  strings.TrimSpace(cfg.ProductsURL),
		Users:     strings.TrimSpace(cfg.UsersURL),
		Addresses: strings.TrimSpace(cfg.AddressesURL),
		Orders:    strings.TrimSpace(cfg.OrdersURL),
		Feedback:  strings.TrimSpace(cfg.FeedbackURL),
	}
	for col, endpoint := range endpoints {
		if endpoint == "" {
			return nil, fmt.Errorf("sheets endpoint for %s is required", col)
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return nil, fmt.Errorf("sheets endpoint for %s: %w", col, err)
		}
		endpoints[col] = strings.TrimRight(endpoint, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoints:  endpoints,
		token:      strings.TrimSpace(cfg.APIToken),
	}
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client, nil
}

// Query returns the rows whose field equals value. A 404 or 204 yields no rows.
func (c *Client) Query(ctx context.Context, col Collection, field, value string) ([]Row, error) {
	if strings.TrimSpace(field) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query field is required")
	}
	base, err := c.endpoint(col)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set(field, value)
	return c.fetchRows(ctx, col, opQuery, base+"/search?"+q.Encode())
}

// List returns every row in the collection.
func (c *Client) List(ctx context.Context, col Collection) ([]Row, error) {
	base, err := c.endpoint(col)
	if err != nil {
		return nil, err
	}
	return c.fetchRows(ctx, col, opList, base)
}

// Create appends one row. The API does not return the stored row.
func (c *Client) Create(ctx context.Context, col Collection, row Row) error {
	base, err := c.endpoint(col)
	if err != nil {
		return err
	}
	payload := struct {
		Data []Row `json:"data"`
	}{Data: []Row{row}}
	_, err = c.send(ctx, col, opCreate, http.MethodPost, base, payload)
	return err
}

// Update replaces the columns in row on the records where keyField equals keyValue.
func (c *Client) Update(ctx context.Context, col Collection, keyField, keyValue string, row Row) error {
	target, err := c.keyedURL(col, keyField, keyValue)
	if err != nil {
		return err
	}
	payload := struct {
		Data Row `json:"data"`
	}{Data: row}
	_, err = c.send(ctx, col, opUpdate, http.MethodPut, target, payload)
	return err
}

// Delete removes the records where keyField equals keyValue.
func (c *Client) Delete(ctx context.Context, col Collection, keyField, keyValue string) error {
	target, err := c.keyedURL(col, keyField, keyValue)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, col, opDelete, http.MethodDelete, target, nil)
	return err
}

func (c *Client) fetchRows(ctx context.Context, col Collection, op, target string) ([]Row, error) {
	resp, err := c.send(ctx, col, op, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(resp)) == 0 {
		return []Row{}, nil
	}
	var rows []Row
	if err := json.Unmarshal(resp, &rows); err != nil {
		c.logFailure(ctx, col, op, 0, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s rows", col))
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// send performs one call and checks the answer with acceptStatus.
func (c *Client) send(ctx context.Context, col Collection, op, method, target string, payload any) ([]byte, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sheets client not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sheets rate limiter")
		}
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s %s payload", col, op))
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s %s request", col, op))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Observe(string(col), op, 0, time.Since(start))
		c.metrics.IncFailure(string(col), op)
		c.logFailure(ctx, col, op, 0, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s %s request", col, op))
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.Observe(string(col), op, resp.StatusCode, time.Since(start))

	accepted, empty := acceptStatus(op, resp.StatusCode)
	switch {
	case accepted && empty:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, nil
	case !accepted:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		statusErr := &StatusError{Status: resp.StatusCode, URL: target, Body: string(msg)}
		c.metrics.IncFailure(string(col), op)
		c.logFailure(ctx, col, op, resp.StatusCode, statusErr)
		code := pkgerrors.CodeDependency
		if resp.StatusCode == http.StatusNotFound {
			code = pkgerrors.CodeNotFound
		}
		return nil, pkgerrors.Wrap(code, statusErr, fmt.Sprintf("%s %s request failed", col, op))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncFailure(string(col), op)
		c.logFailure(ctx, col, op, resp.StatusCode, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read %s %s response", col, op))
	}
	return data, nil
}

// acceptStatus reports whether status is a success for op and whether the body can be skipped.
// Reads treat 204 and 404 as no rows. Creates accept only 200 and 201. Updates and deletes
// accept any 2xx; a 404 there means the keyed record is missing.
func acceptStatus(op string, status int) (accepted, empty bool) {
	switch op {
	case opQuery, opList:
		if status == http.StatusNoContent || status == http.StatusNotFound {
			return true, true
		}
	case opCreate:
		return status == http.StatusOK || status == http.StatusCreated, false
	default:
		if status == http.StatusNoContent {
			return true, true
		}
	}
	return status >= 200 && status <= 299, false
}

func (c *Client) endpoint(col Collection) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "sheets client not configured")
	}
	base, ok := c.endpoints[col]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown collection %q", col))
	}
	return base, nil
}

func (c *Client) keyedURL(col Collection, keyField, keyValue string) (string, error) {
	base, err := c.endpoint(col)
	if err != nil {
		return "", err
	}
	keyField = strings.TrimSpace(keyField)
	keyValue = strings.TrimSpace(keyValue)
	if keyField == "" || keyValue == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "record key is required")
	}
	return fmt.Sprintf("%s/%s/%s", base, url.PathEscape(keyField), url.PathEscape(keyValue)), nil
}

func (c *Client) logFailure(ctx context.Context, col Collection, op string, status int, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"collection": string(col),
		"op":         op,
		"status":     status,
	})
	c.logg.Error(ctx, "sheets request failed", err)
}
