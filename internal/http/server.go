package http

import (
	"context"
	"net/http"
	"sync"

	"resourceguardian/internal/auth"
	"resourceguardian/internal/middleware/ratelimit"
	"resourceguardian/internal/middleware/security"
	"resourceguardian/internal/middleware/trace"
	"resourceguardian/internal/services"
)

// Server wires the JSON API over the domain services.
type Server struct {
	http.Server

	users        *services.UserService
	ledger       *services.SavingsLedger
	goals        *services.GoalTracker
	transactions *services.TransactionService
	usage        *services.UsageService
	tokens       *auth.TokenIssuer

	tracer       *trace.Middleware
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// Options carries the dependencies for NewServer.
type Options struct {
	Addr               string
	Users              *services.UserService
	Ledger             *services.SavingsLedger
	Goals              *services.GoalTracker
	Transactions       *services.TransactionService
	Usage              *services.UsageService
	Tokens             *auth.TokenIssuer
	RateLimitPerMinute int
}

// NewServer configures routes and middleware, returning a
// ready-to-run http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: opts.Addr,
		},
		users:        opts.Users,
		ledger:       opts.Ledger,
		goals:        opts.Goals,
		transactions: opts.Transactions,
		usage:        opts.Usage,
		tokens:       opts.Tokens,
		tracer:       trace.NewMiddleware(security.ExtractClientIP),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/verify-token", s.withAuth(s.handleVerifyToken))
	mux.HandleFunc("POST /api/auth/change-password", s.withAuth(s.handleChangePassword))

	mux.HandleFunc("GET /api/users/me", s.withAuth(s.handleGetMe))
	mux.HandleFunc("PUT /api/users/me", s.withAuth(s.handleUpdateProfile))
	mux.HandleFunc("DELETE /api/users/me", s.withAuth(s.handleDeleteMe))
	mux.HandleFunc("PUT /api/users/me/preferences", s.withAuth(s.handleUpdatePreferences))
	mux.HandleFunc("PUT /api/users/me/notifications", s.withAuth(s.handleUpdateNotifications))
	mux.HandleFunc("PUT /api/users/me/behavior", s.withAuth(s.handleUpdateBehavior))
	mux.HandleFunc("POST /api/users/me/verify-email", s.withAuth(s.handleVerifyEmail))
	mux.HandleFunc("POST /api/users/me/verify-phone", s.withAuth(s.handleVerifyPhone))
	mux.HandleFunc("GET /api/users/active-count", s.withAuth(s.handleActiveUserCount))

	mux.HandleFunc("POST /api/savings-goals", s.withAuth(s.handleCreateSavingsGoal))
	mux.HandleFunc("GET /api/savings-goals", s.withAuth(s.handleListSavingsGoals))
	mux.HandleFunc("GET /api/savings-goals/active", s.withAuth(s.handleActiveSavingsGoals))
	mux.HandleFunc("GET /api/savings-goals/completed", s.withAuth(s.handleCompletedSavingsGoals))
	mux.HandleFunc("GET /api/savings-goals/time-locked", s.withAuth(s.handleTimeLockedSavingsGoals))
	mux.HandleFunc("GET /api/savings-goals/statistics", s.withAuth(s.handleSavingsSummary))
	mux.HandleFunc("GET /api/savings-goals/{id}", s.withAuth(s.handleGetSavingsGoal))
	mux.HandleFunc("PUT /api/savings-goals/{id}", s.withAuth(s.handleUpdateSavingsGoal))
	mux.HandleFunc("DELETE /api/savings-goals/{id}", s.withAuth(s.handleDeleteSavingsGoal))
	mux.HandleFunc("POST /api/savings-goals/{id}/deposit", s.withAuth(s.handleDeposit))
	mux.HandleFunc("POST /api/savings-goals/{id}/withdraw", s.withAuth(s.handleWithdraw))
	mux.HandleFunc("POST /api/savings-goals/{id}/lock", s.withAuth(s.handleLock))
	mux.HandleFunc("POST /api/savings-goals/{id}/unlock", s.withAuth(s.handleUnlock))

	mux.HandleFunc("POST /api/goals", s.withAuth(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals", s.withAuth(s.handleListGoals))
	mux.HandleFunc("GET /api/goals/statistics", s.withAuth(s.handleGoalSummary))
	mux.HandleFunc("GET /api/goals/{id}", s.withAuth(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withAuth(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withAuth(s.handleDeleteGoal))
	mux.HandleFunc("PATCH /api/goals/{id}/progress", s.withAuth(s.handleUpdateProgress))
	mux.HandleFunc("POST /api/goals/{id}/complete", s.withAuth(s.handleCompleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/reopen", s.withAuth(s.handleReopenGoal))
	mux.HandleFunc("POST /api/goals/{id}/streak", s.withAuth(s.handleIncrementStreak))

	mux.HandleFunc("POST /api/transactions", s.withAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withAuth(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/recent", s.withAuth(s.handleRecentTransactions))
	mux.HandleFunc("GET /api/transactions/pending", s.withAuth(s.handlePendingTransactions))
	mux.HandleFunc("GET /api/transactions/search", s.withAuth(s.handleSearchTransactions))
	mux.HandleFunc("GET /api/transactions/date-range", s.withAuth(s.handleDateRangeTransactions))
	mux.HandleFunc("GET /api/transactions/amount-range", s.withAuth(s.handleAmountRangeTransactions))
	mux.HandleFunc("GET /api/transactions/monthly-summary", s.withAuth(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/transactions/category-summary", s.withAuth(s.handleCategorySummary))
	mux.HandleFunc("GET /api/transactions/statistics", s.withAuth(s.handleStatistics))
	mux.HandleFunc("GET /api/transactions/{id}", s.withAuth(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withAuth(s.handleUpdateTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}/status", s.withAuth(s.handleUpdateTransactionStatus))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withAuth(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/mpesa", s.withAuth(s.handlePaymentNotification))
	mux.HandleFunc("POST /api/payments/notifications", s.withAuth(s.handlePaymentNotification))

	mux.HandleFunc("POST /api/app-usage", s.withAuth(s.handleRecordUsage))
	mux.HandleFunc("GET /api/app-usage", s.withAuth(s.handleListUsage))
	mux.HandleFunc("GET /api/app-usage/summary", s.withAuth(s.handleUsageSummary))
	mux.HandleFunc("DELETE /api/app-usage/{id}", s.withAuth(s.handleDeleteUsage))

	limited := s.limiter.Middleware(security.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
	})

	var handler http.Handler = mux
	handler = limited(handler)
	handler = security.Middleware(security.DefaultHeadersConfig())(handler)
	handler = s.tracer.Middleware(handler)
	s.Handler = handler

	return s
}

// Shutdown stops the middleware housekeeping along with the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"totalRequests":       m.TotalRequests,
		"averageResponseUsec": m.AverageResponseTime,
		"trackedClients":      s.limiter.ActiveClients(),
	})
}
