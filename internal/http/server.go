package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"studentspend/internal/core"
	"studentspend/internal/log"
	"studentspend/internal/middleware/ratelimit"
	"studentspend/internal/middleware/security"
	"studentspend/internal/middleware/trace"
)

// Ledger is what the handlers need from the service layer.
type Ledger interface {
	AddExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, core.Event, error)
	RemoveExpense(ctx context.Context, id string) (core.Expense, core.Event, error)
	ClearExpenses(ctx context.Context) (core.Event, error)
	UpdateSavingsGoal(ctx context.Context, goal decimal.Decimal) (core.Event, error)
	Refresh(ctx context.Context) error
	Expenses() []core.Expense
	SavingsGoal() decimal.Decimal
	Stats(now time.Time) core.Stats
	StatsCacheSize() int
	Ask(ctx context.Context, query string) (string, error)
	Greeting() string
	StartSession(ctx context.Context, u core.User) (core.Event, error)
	CurrentUser(ctx context.Context) (core.User, error)
	EndSession(ctx context.Context) (core.Event, error)
	Ready(ctx context.Context) error
}

// Options tunes the middleware chain.
type Options struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	AllowedOrigins     []string
	Logger             *log.Logger
	// Now overrides the clock used for month defaults and notifications.
	Now func() time.Time
}

type Server struct {
	http.Server
	ledger      Ledger
	logger      *log.Logger
	now         func() time.Time
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	rlCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}
	if opts.RateLimitBurst > 0 {
		rlCfg.Burst = opts.RateLimitBurst
	}

	detector := security.NewDetector()
	s := &Server{
		ledger:      ledger,
		logger:      opts.Logger.WithComponent(log.ComponentHTTP),
		now:         opts.Now,
		rateLimiter: ratelimit.NewLimiter(rlCfg),
		detector:    detector,
		tracer:      trace.NewMiddleware(detector.ExtractClientIP),
		startedAt:   opts.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses", s.handleClearExpenses)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/savings-goal", s.handleGetSavingsGoal)
	mux.HandleFunc("PUT /api/savings-goal", s.handleUpdateSavingsGoal)

	mux.HandleFunc("POST /api/assistant", s.handleAsk)
	mux.HandleFunc("GET /api/assistant/greeting", s.handleGreeting)

	mux.HandleFunc("GET /api/session", s.handleGetSession)
	mux.HandleFunc("PUT /api/session", s.handleStartSession)
	mux.HandleFunc("DELETE /api/session", s.handleEndSession)

	headersCfg := security.DefaultHeadersConfig()
	headersCfg.AllowedOrigins = opts.AllowedOrigins

	var handler http.Handler = mux
	handler = s.limitMutations(handler)
	handler = s.flagSuspicious(handler)
	handler = security.NewHeadersMiddleware(headersCfg).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(opts.Logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Assistant replies are held back by the typing delay.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// limitMutations applies the per-client limiter to non-safe methods only.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and the limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
