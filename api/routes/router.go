package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lemonhouse/storefront/api/controllers"
	"github.com/lemonhouse/storefront/api/middleware"
	"github.com/lemonhouse/storefront/internal/accounts"
	"github.com/lemonhouse/storefront/internal/addresses"
	"github.com/lemonhouse/storefront/internal/cart"
	"github.com/lemonhouse/storefront/internal/catalog"
	"github.com/lemonhouse/storefront/internal/feedback"
	"github.com/lemonhouse/storefront/internal/orders"
	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/pkg/config"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	sessionService session.Service,
	accountService accounts.Service,
	addressService addresses.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	orderService orders.Service,
	feedbackService feedback.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginPhoneLimit,
	)
	signUpPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.RateLimit.SignUpWindow,
		cfg.RateLimit.SignUpIPLimit,
		cfg.RateLimit.SignUpPhoneLimit,
	)

	ready := map[string]controllers.Pinger{}
	if redisClient != nil {
		ready["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", controllers.SessionStart(sessionService, cfg.Session, logg))
		r.Post("/forms/input", controllers.FormFieldInput(logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))

			r.Get("/session", controllers.SessionFetch(sessionService, logg))

			r.Route("/auth", func(r chi.Router) {
				r.With(middleware.AuthRateLimit(signUpPolicy, rateStore(redisClient), logg)).Post("/signup", controllers.AuthSignUp(accountService, logg))
				r.With(middleware.AuthRateLimit(loginPolicy, rateStore(redisClient), logg)).Post("/login", controllers.AuthLogin(accountService, logg))
				r.Post("/logout", controllers.AuthLogout(accountService, logg))
			})
			r.Patch("/account", controllers.AccountUpdate(accountService, logg))

			r.Get("/products", controllers.ProductList(catalogService, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(addressService, logg))
				r.Post("/", controllers.AddressCreate(addressService, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(addressService, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(addressService, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartService, logg))
				r.Post("/lines", controllers.CartAddLine(cartService, logg))
				r.Patch("/lines/{index}", controllers.CartUpdateLine(cartService, logg))
				r.Delete("/lines/{index}", controllers.CartRemoveLine(cartService, logg))
				r.Post("/submit", controllers.CartSubmit(cartService, logg))
				r.Get("/message-link", controllers.CartMessageLink(cartService, logg))
			})

			r.Get("/orders", controllers.OrderHistory(orderService, logg))
			r.Post("/feedback", controllers.FeedbackSubmit(feedbackService, logg))
		})
	})

	return r
}

// rateStore keeps a nil client from becoming a non-nil interface value.
func rateStore(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
