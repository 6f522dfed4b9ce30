package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type scanRequest struct {
	Limit int `json:"limit"`
}

func (s *Server) handleScan(c *gin.Context) {
	// An empty body means "use the configured default limit".
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.scanLimit
	}

	// The scan outlives the request, so it must not inherit its context.
	s.scanner.Start(context.Background(), limit)
	c.JSON(http.StatusAccepted, gin.H{"status": "started", "limit": limit})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.scanner.Status())
}

func (s *Server) handleResults(c *gin.Context) {
	opps := s.scanner.Results()

	// Before any run completes in this process, fall back to the latest
	// persisted list so a restart does not lose the previous scan.
	if len(opps) == 0 && s.history != nil {
		persisted, err := s.history.LatestOpportunities(c.Request.Context())
		if err != nil {
			s.log.Warn("failed to load persisted opportunities", zap.Error(err))
		} else {
			opps = persisted
		}
	}

	c.JSON(http.StatusOK, gin.H{"opportunities": opps, "count": len(opps)})
}

type unsubscribeRequest struct {
	Domain string `json:"domain" binding:"required"`
	Link   string `json:"link"`
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain is required"})
		return
	}

	res := s.executor.Execute(c.Request.Context(), req.Domain, req.Link)

	if s.history != nil {
		if err := s.history.RecordAttempt(c.Request.Context(), res, req.Link); err != nil {
			s.log.Warn("failed to record attempt", zap.String("domain", req.Domain), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) handleAuthStatus(c *gin.Context) {
	if !s.account.IsAuthenticated() {
		c.JSON(http.StatusOK, gin.H{"logged_in": false})
		return
	}

	email, err := s.account.Profile(c.Request.Context())
	if err != nil {
		s.log.Warn("failed to load profile", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"logged_in": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_in": true, "email": email})
}

func (s *Server) handleSignOut(c *gin.Context) {
	if err := s.account.SignOut(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign out"})
		return
	}
	s.scanner.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

const historyLimit = 50

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}

	attempts, err := s.history.ListAttempts(c.Request.Context(), historyLimit)
	if err != nil {
		s.log.Error("failed to list attempts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	scans, err := s.history.ListScans(c.Request.Context(), historyLimit)
	if err != nil {
		s.log.Error("failed to list scans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": attempts, "scans": scans})
}
