package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/sheets"
)

var (
	errMissingGrade  = errors.New("product grade is required")
	errNegativePrice = errors.New("product price must not be negative")
)

// Service serves the product catalog. It never fails: unreadable or empty remote data is
// replaced by the static fallback list.
type Service interface {
	List(ctx context.Context) []Product
}

// fallbackTTL caps how long the static list is served before the remote is tried again.
const fallbackTTL = 30 * time.Second

type service struct {
	gateway sheets.Gateway
	logg    *logger.Logger
	ttl     time.Duration
	now     func() time.Time
	flight  singleflight.Group

	mu        sync.Mutex
	cached    []Product
	expiresAt time.Time
}

// NewService builds a catalog service. A non-positive ttl disables caching.
func NewService(gateway sheets.Gateway, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sheets gateway required")
	}
	return &service{
		gateway: gateway,
		logg:    logg,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

func (s *service) List(ctx context.Context) []Product {
	if products, ok := s.fromCache(); ok {
		return products
	}

	// Concurrent misses share one remote call. The call is detached from the first
	// caller's cancellation; the gateway's HTTP timeout still bounds it.
	v, _, _ := s.flight.Do("products", func() (any, error) {
		if products, ok := s.fromCache(); ok {
			return products, nil
		}
		products, fallback := s.fetch(context.WithoutCancel(ctx))
		s.store(products, fallback)
		return products, nil
	})
	return copyProducts(v.([]Product))
}

func (s *service) fromCache() ([]Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.now().Before(s.expiresAt) {
		return copyProducts(s.cached), true
	}
	return nil, false
}

func (s *service) store(products []Product, fallback bool) {
	ttl := s.ttl
	if fallback && ttl > fallbackTTL {
		ttl = fallbackTTL
	}
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = products
	s.expiresAt = s.now().Add(ttl)
}

// fetch reads the remote list. The second result reports that the static list was used.
func (s *service) fetch(ctx context.Context) ([]Product, bool) {
	rows, err := s.gateway.List(ctx, sheets.Products)
	if err != nil {
		s.warn(ctx, "catalog.fetch_failed", map[string]any{"error": err.Error()})
		return Fallback(), true
	}

	products := make([]Product, 0, len(rows))
	seen := map[string]struct{}{}
	for i, row := range rows {
		product, err := fromRow(row)
		if err != nil {
			s.warn(ctx, "catalog.row_dropped", map[string]any{"row": i, "error": err.Error()})
			continue
		}
		if _, dup := seen[product.Grade]; dup {
			s.warn(ctx, "catalog.duplicate_grade", map[string]any{"row": i, "grade": product.Grade})
			continue
		}
		seen[product.Grade] = struct{}{}
		products = append(products, product)
	}
	if len(products) == 0 {
		s.warn(ctx, "catalog.empty_using_fallback", nil)
		return Fallback(), true
	}
	return products, false
}

func (s *service) warn(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	if len(fields) > 0 {
		ctx = s.logg.WithFields(ctx, fields)
	}
	s.logg.Warn(ctx, msg)
}

func copyProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
