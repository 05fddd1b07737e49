package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/logger"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser/fallback"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/processor"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server exposes the document pipelines over HTTP. It is a caller of the
// engine: it owns duplicate rejection via the dedup store and logs parse
// failures before rejecting the upload.
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	dedup    DedupStore
	log      zerolog.Logger
}

// ServerOption configures the server
type ServerOption func(*Server)

// WithLogger sets the server logger
func WithLogger(log zerolog.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithDedupStore overrides the dedup store
func WithDedupStore(d DedupStore) ServerOption {
	return func(s *Server) { s.dedup = d }
}

// WithPipeline overrides the processing pipeline
func WithPipeline(p *processor.Pipeline) ServerOption {
	return func(s *Server) { s.pipeline = p }
}

// NewServer creates the API server
func NewServer(config *Config, opts ...ServerOption) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		config: config,
		router: router,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = processor.NewPipeline(processor.WithLogger(s.log))
	}
	if s.dedup == nil {
		s.dedup = NewMemoryDedupStore()
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/documents/parse", s.handleParse)
		v1.POST("/documents/parse/fallback", s.handleParseFallback)
		v1.POST("/documents/validate", s.handleValidate)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleParse(c *gin.Context) {
	s.parseWith(c, s.pipeline.ProcessXML)
}

func (s *Server) handleParseFallback(c *gin.Context) {
	s.parseWith(c, s.pipeline.ProcessXMLFallback)
}

func (s *Server) parseWith(c *gin.Context, run func(context.Context, parser.Input) *processor.Result) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := run(ctx, req.input())
	if result.Error != nil {
		s.log.Warn().Err(result.Error).Str("file", req.FileName).Msg("rejecting upload")
		c.JSON(statusForError(result.Error), ErrorResponse{Error: result.Error.Error()})
		return
	}

	if s.dedup.Seen(result.Document.Hash) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "duplicate document",
			Details: result.Document.FullNumber,
		})
		return
	}

	c.JSON(http.StatusOK, ParseResponse{
		Document: result.Document,
		Method:   string(result.Method),
		Warnings: result.Warnings,
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := s.pipeline.ProcessXML(ctx, req.input())
	if result.Error != nil {
		c.JSON(http.StatusOK, ValidationResponse{
			Valid:  false,
			Errors: []string{result.Error.Error()},
		})
		return
	}

	var errs []string
	for _, v := range result.Document.CheckInvariants() {
		errs = append(errs, v.Error())
	}

	c.JSON(http.StatusOK, ValidationResponse{
		Valid:  len(errs) == 0,
		Errors: errs,
	})
}

func (r ParseRequest) input() parser.Input {
	return parser.Input{
		XML:        r.XML,
		FileName:   r.FileName,
		CompanyID:  r.CompanyID,
		SupplierID: r.SupplierID,
		UserID:     r.UserID,
	}
}

// statusForError maps the two failure shapes onto HTTP statuses: structural
// rejections are client errors, missing mandatory fields and the fallback's
// bare no-result are unprocessable content.
func statusForError(err error) int {
	var parseErr *model.ParseError
	if errors.As(err, &parseErr) {
		switch parseErr.Kind {
		case model.ErrMalformedXML, model.ErrUnsupportedRoot:
			return http.StatusBadRequest
		default:
			return http.StatusUnprocessableEntity
		}
	}
	if errors.Is(err, fallback.ErrNoResult) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
