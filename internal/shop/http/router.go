package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/shop/domain"
	"github.com/aussiebroadwan/storefront/internal/shop/metrics"
	"github.com/aussiebroadwan/storefront/internal/shop/service"
	"github.com/aussiebroadwan/storefront/internal/shop/store"
	"github.com/aussiebroadwan/storefront/pkg/blobx"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/upload"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/storefront/api/shop" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configures the parts of the router that vary by deployment.
type Options struct {
	Version string
	Cookie  httpx.SessionCookie
	Upload  upload.Config

	CORSOrigins []string

	// StaticDir, when set, is served at / with index.html as fallback.
	StaticDir string
	// MediaDir, when set, is served under /media/ for the local blob store.
	MediaDir string

	StrictLimit  httpx.RateLimitConfig
	LenientLimit httpx.RateLimitConfig

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	opts      Options
	verifier  jwtx.Verifier
	startTime time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
	store     store.Store
	blobs     blobx.Store
	uploads   *upload.Admission

	UserService    *service.UserService
	CatalogService *service.CatalogService
}

func NewRouter(
	opts Options,
	verifier jwtx.Verifier,
	st store.Store,
	blobs blobx.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	if !opts.StrictLimit.Valid() {
		opts.StrictLimit = httpx.StrictLimit
	}
	if !opts.LenientLimit.Valid() {
		opts.LenientLimit = httpx.LenientLimit
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Cookie.MaxAge == 0 {
		opts.Cookie = httpx.NewSessionCookie(opts.Cookie.Secure, jwtx.DefaultSessionTTL)
	}

	r := &Router{
		Mux:       http.NewServeMux(),
		opts:      opts,
		verifier:  verifier,
		startTime: time.Now(),
		logger:    logger,
		metrics:   m,
		store:     st,
		blobs:     blobs,
		uploads:   upload.New(blobs, opts.Upload, m.UploadOutcome),
	}

	// Metrics sits last so it sees the request the mux routes.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", slogx.RequestIDHeader},
			ExposedHeaders:   []string{slogx.RequestIDHeader, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		m.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerCatalog()
	r.registerSystem()
	r.registerFiles()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Storefront API
//	@version					0.1.0
//	@description				Product catalogue with cookie sessions. Sign up and log in to receive an HttpOnly "token" cookie holding an HS256 session token valid for 24 hours. Catalogue writes require the administrator role (4).
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/storefront
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5001
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						token
//	@description				Session token set by /api/v1/login.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authenticate() httpx.Stage {
	return httpx.Authenticate(r.verifier, r.opts.Cookie, r.metrics.AuthRejected)
}

func (r *Router) requireAdmin() httpx.Stage {
	return httpx.RequireRole(httpx.RoleIs(int(domain.RoleAdmin)), r.metrics.AuthRejected)
}

func (r *Router) registerUsers() {
	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /api/v1/sign-up",
		httpx.Chain(&SignUpHandler{UserService: r.UserService},
			httpx.RateLimitByIP(r.opts.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/v1/login",
		httpx.Chain(&LoginHandler{
			UserService: r.UserService,
			Cookie:      r.opts.Cookie,
			Observe:     r.metrics.LoginOutcome,
		},
			httpx.RateLimitByIP(r.opts.StrictLimit),
		),
	)

	// Logout only clears a cookie; GET kept for existing frontends.
	logout := httpx.Chain(&LogoutHandler{Cookie: r.opts.Cookie},
		httpx.RateLimitByIP(r.opts.LenientLimit),
	)
	r.Mux.Handle("POST /api/v1/logout", logout)
	r.Mux.Handle("GET /api/v1/logout", logout)

	r.Mux.Handle("GET /api/v1/me",
		httpx.Chain(&MeHandler{UserService: r.UserService},
			r.authenticate().Middleware(),
			httpx.RateLimitByUser(r.opts.LenientLimit),
		),
	)
}

func (r *Router) registerCatalog() {
	products := &ProductsHandler{CatalogService: r.CatalogService}
	categories := &CategoriesHandler{CatalogService: r.CatalogService}

	r.Mux.Handle("GET /api/v1/products",
		httpx.Chain(http.HandlerFunc(products.HandleList),
			httpx.RateLimitByIP(r.opts.LenientLimit),
		),
	)

	// Upload runs first, then identity and role. The limiter sits in front
	// of all three so rejected floods never reach the blob store.
	r.Mux.Handle("POST /api/v1/products",
		httpx.Chain(
			httpx.Pipeline(http.HandlerFunc(products.HandleCreate),
				r.uploads.Stage(),
				r.authenticate(),
				r.requireAdmin(),
			),
			httpx.RateLimitByIP(r.opts.LenientLimit),
		),
	)

	r.Mux.Handle("GET /api/v1/categories",
		httpx.Chain(http.HandlerFunc(categories.HandleList),
			httpx.RateLimitByIP(r.opts.LenientLimit),
		),
	)
	// Authenticate before the limiter so it keys on the user, not just the
	// address.
	r.Mux.Handle("POST /api/v1/category",
		httpx.Chain(
			httpx.Pipeline(http.HandlerFunc(categories.HandleCreate),
				r.requireAdmin(),
			),
			r.authenticate().Middleware(),
			httpx.RateLimitByUser(r.opts.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.opts.Version),
			httpx.RateLimitByIP(r.opts.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.opts.Version, r.store, r.blobs),
			httpx.RateLimitByIP(r.opts.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.opts.Gatherer, promhttp.HandlerOpts{}))
}

func (r *Router) registerFiles() {
	if r.opts.MediaDir != "" {
		r.Mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(r.opts.MediaDir))))
	}
	if r.opts.StaticDir != "" {
		r.Mux.Handle("GET /", SPAHandler(r.opts.StaticDir))
	} else {
		r.Mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
