// Package server exposes the scan and unsubscribe pipeline over a local
// JSON API that a browser frontend polls.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lu-zhengda/mailsweep/internal/domain"
	"github.com/lu-zhengda/mailsweep/internal/scan"
	"github.com/lu-zhengda/mailsweep/internal/store/sqlite"
	"github.com/lu-zhengda/mailsweep/internal/unsub"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 5 * time.Second

// Account is the mail-account surface the auth endpoints need.
type Account interface {
	IsAuthenticated() bool
	Profile(ctx context.Context) (string, error)
	SignOut() error
}

// History persists attempts and serves past runs. *sqlite.DB satisfies
// it; a nil History disables the history endpoints.
type History interface {
	RecordAttempt(ctx context.Context, res domain.UnsubscribeResult, link string) error
	ListAttempts(ctx context.Context, limit int) ([]sqlite.Attempt, error)
	ListScans(ctx context.Context, limit int) ([]sqlite.ScanRecord, error)
	LatestOpportunities(ctx context.Context) ([]domain.Opportunity, error)
}

// Server wires the HTTP routes to the pipeline components.
type Server struct {
	scanner   *scan.Scanner
	executor  *unsub.Executor
	account   Account
	history   History
	scanLimit int
	log       *zap.Logger
	engine    *gin.Engine
}

// New creates a Server. scanLimit is the default message cap when a scan
// request does not carry its own.
func New(scanner *scan.Scanner, executor *unsub.Executor, account Account, history History, scanLimit int, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		scanner:   scanner,
		executor:  executor,
		account:   account,
		history:   history,
		scanLimit: scanLimit,
		log:       log,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/scan", s.handleScan)
		api.GET("/status", s.handleStatus)
		api.GET("/results", s.handleResults)
		api.POST("/unsubscribe", s.handleUnsubscribe)
		api.GET("/auth-status", s.handleAuthStatus)
		api.POST("/sign-out", s.handleSignOut)
		api.GET("/history", s.handleHistory)
	}

	return r
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.log.Info("server listening", zap.String("addr", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	s.log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
