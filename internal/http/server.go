package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"familyassets/internal/cache"
	"familyassets/internal/core"
	"familyassets/internal/log"
	"familyassets/internal/middleware/ratelimit"
	"familyassets/internal/middleware/security"
	"familyassets/internal/middleware/trace"
	"familyassets/internal/stats"
	"familyassets/internal/store"
	appweb "familyassets/web"
)

// Options wires the server to the asset store and its collaborators.
type Options struct {
	Store *store.Store
	// Summaries caches dashboard aggregates by store revision. Nil disables
	// caching.
	Summaries   *cache.Loader[stats.Summary]
	TrendMonths int
	Logger      *log.Logger
	RateLimit   ratelimit.Config
	// TrustedProxies extends the proxies whose X-Forwarded-For is honoured.
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates   *template.Template
	store       *store.Store
	summaries   *cache.Loader[stats.Summary]
	trendMonths int
	logger      *log.Logger

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = stats.DefaultTrendMonths
	}
	if opts.RateLimit.RequestsPerMinute == 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err.Error())
		}
	}

	s := &Server{
		store:       opts.Store,
		summaries:   opts.Summaries,
		trendMonths: opts.TrendMonths,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		detector:    detector,
		tracer:      trace.NewMiddleware(detector.ExtractClientIP, logger),
		startedAt:   time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err.Error())
	} else {
		s.templates = t
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /ui/assets", s.handleAssetList)
	mux.HandleFunc("GET /ui/assets/{id}/edit", s.handleEditForm)
	mux.HandleFunc("GET /ui/form", s.handleAddForm)
	mux.HandleFunc("GET /ui/stats", s.handleStats)

	mux.HandleFunc("POST /assets", s.handleCreateAsset)
	mux.HandleFunc("POST /assets/{id}", s.handleUpdateAsset)
	mux.HandleFunc("POST /assets/{id}/delete", s.handleDeleteAsset)

	mux.HandleFunc("GET /api/assets", s.handleAPIAssets)
	mux.HandleFunc("GET /api/totals", s.handleAPITotals)
	mux.HandleFunc("GET /api/stats", s.handleAPIStats)
	mux.HandleFunc("GET /api/charts/{chart}", s.handleAPIChart)
	mux.HandleFunc("GET /export", s.handleExport)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			TriggerErrorNotification("Too many requests, please wait a minute").
			BodyHTML(`<div class="error">Rate limit exceeded. Please try again later.</div>`).
			Write(w)
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = detector.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// summary returns the aggregates for the current collection. Entries are
// keyed by store revision so any mutation naturally misses the cache.
func (s *Server) summary(ctx context.Context) (stats.Summary, error) {
	snap := s.store.Snapshot()
	compute := func() (stats.Summary, error) {
		return stats.Summarize(snap.Assets, s.store.Now(), s.trendMonths), nil
	}
	if s.summaries == nil {
		return compute()
	}

	key := "rev-" + strconv.FormatInt(snap.Revision, 10)
	sum, hit, err := s.summaries.Get(key, compute)
	if err == nil {
		log.FromContext(ctx).DebugContext(ctx, "Summary ready", log.FieldRevision, snap.Revision, "cache_hit", hit)
	}
	return sum, err
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount": core.FormatAmount,
		"plain":  core.FormatPlain,
		"label": func(c core.Category) string {
			return c.Label()
		},
		"color": func(c core.Category) string {
			return c.Color()
		},
		"negative": func(d decimal.Decimal) bool {
			return d.IsNegative()
		},
		"categories": core.Categories,
	}
}
