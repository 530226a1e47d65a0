package server

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"token-finder/internal/analyze"
	"token-finder/internal/logger"
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	orchestrator *analyze.Orchestrator
	engine       *gin.Engine
}

func New(orchestrator *analyze.Orchestrator) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		orchestrator: orchestrator,
		engine:       gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	api := s.engine.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/wallet/:walletAddress", s.handleRescan)
		api.GET("/user/:walletAddress", s.handleUser)
	}
}

// Handler returns the router for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type analyzeBody struct {
	Query         string `json:"query"`
	WalletAddress string `json:"wallet_address"`
	MaxResults    int    `json:"max_results"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var body analyzeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Query == "" || body.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query and wallet_address are required"})
		return
	}

	outcome, err := s.orchestrator.Run(c.Request.Context(), body.WalletAddress, body.Query, body.MaxResults)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleRescan(c *gin.Context) {
	outcome, err := s.orchestrator.Rescan(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleUser(c *gin.Context) {
	addr := c.Param("walletAddress")
	if !walletPattern.MatchString(addr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed wallet address"})
		return
	}
	record, err := s.orchestrator.Stored(c.Request.Context(), addr)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// renderError maps pipeline error codes onto HTTP statuses. Unclassified
// errors are logged and reported as a generic 500 so internals never leak.
func (s *Server) renderError(c *gin.Context, err error) {
	var ae *analyze.Error
	if errors.As(err, &ae) {
		status := http.StatusInternalServerError
		switch ae.Code {
		case analyze.CodeInvalidInput:
			status = http.StatusBadRequest
		case analyze.CodeNotFound:
			status = http.StatusNotFound
		case analyze.CodeExtractionFailed, analyze.CodeInternal:
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": ae.Message})
		return
	}
	logger.ErrorWithErr(c.Request.Context(), "Unclassified handler error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
