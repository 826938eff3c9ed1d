package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"jizhang/internal/config"
	"jizhang/internal/ledger"
	applog "jizhang/internal/log"
	"jizhang/internal/middleware/ratelimit"
	"jizhang/internal/middleware/security"
	"jizhang/internal/middleware/trace"
	appweb "jizhang/web"
)

// Options configures NewServer. Zero values fall back to the config defaults.
type Options struct {
	Addr           string
	Book           *ledger.Book
	Taxonomy       config.Taxonomy
	RecentLimit    int
	StatsWindow    int
	RequestTimeout time.Duration
	RateLimit      ratelimit.Config
	Logger         *applog.Logger
	Now            func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	book      *ledger.Book
	taxonomy  config.Taxonomy
	logger    *applog.Logger
	now       func() time.Time

	recentLimit int
	statsWindow int
	timeout     time.Duration

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Book == nil {
		return nil, errors.New("http: a ledger book is required")
	}
	if len(opts.Taxonomy.Users) == 0 {
		opts.Taxonomy = config.DefaultTaxonomy()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 30
	}
	if opts.StatsWindow <= 0 {
		opts.StatsWindow = 200
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 7 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		templates:   t,
		book:        opts.Book,
		taxonomy:    opts.Taxonomy,
		logger:      logger,
		now:         opts.Now,
		recentLimit: opts.RecentLimit,
		statsWindow: opts.StatsWindow,
		timeout:     opts.RequestTimeout,
		limiter:     ratelimit.NewLimiter(opts.RateLimit),
		detector:    security.NewDetector(opts.Logger),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ClientIP)

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /{$}", s.handlePage(""))
	mux.HandleFunc("GET /stats", s.handlePage(sectionStats))
	mux.HandleFunc("GET /stock", s.handlePage(sectionStock))
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /stock/trades", s.handleCreateTrade)

	mux.HandleFunc("GET /api/recent", s.handleAPIRecent)
	mux.HandleFunc("GET /api/stats", s.handleAPIStats)
	mux.HandleFunc("GET /api/trades", s.handleAPITrades)
	mux.HandleFunc("GET /api/list", s.handleAPIList)
	mux.HandleFunc("GET /list", s.handleAPIList)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.Handler = chain(mux,
		s.tracer.Middleware,
		applog.Middleware(logger, trace.RequestID),
		security.Headers(security.DefaultHeadersConfig()),
		s.detector.Middleware,
		s.limiter.Middleware(s.detector.ClientIP, s.handleRateLimited, http.MethodPost),
	)
	s.Addr = opts.Addr
	s.ReadHeaderTimeout = 10 * time.Second
	return s, nil
}

// chain wraps h so the first middleware listed runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Shutdown gracefully shuts down the server and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// requestContext bounds the store calls made while serving r.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "rate limit exceeded",
		applog.FieldClientIP, s.detector.ClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "請求過於頻繁，請稍後再試", wantsJSON(r, nil)).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().BodyString("ok").Write(w)
}

// handleReady reads the expense table once.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	if err := s.book.Ping(ctx); err != nil {
		s.logger.Failure(ctx, "readiness check failed", applog.OpRead, err)
		NewResponse().Status(http.StatusServiceUnavailable).BodyString("not ready").Write(w)
		return
	}
	NewResponse().BodyString("ready").Write(w)
}
