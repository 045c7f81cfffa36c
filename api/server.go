// Package api exposes the analysis pipeline over HTTP. A run is a
// single request: upload a dataset with a pipeline config, get back
// the assembled report. Completed runs are persisted when a run
// repository is wired in.
package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"plato/adapters/ingest"
	"plato/adapters/postgres"
	"plato/domain/core"
	"plato/domain/dataset"
	"plato/internal"
	"plato/internal/config"
	"plato/internal/export"
	"plato/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// Server hosts the run API.
type Server struct {
	router *gin.Engine
	runs   *postgres.RunRepository // nil when persistence is not configured
	log    *internal.Logger
}

// NewServer creates a server. Pass a nil repository to run without
// persistence; GET endpoints for stored runs then return 503.
func NewServer(runs *postgres.RunRepository, log *internal.Logger) *Server {
	s := &Server{
		router: gin.Default(),
		runs:   runs,
		log:    log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/api/runs", s.handleCreateRun)
	s.router.GET("/api/runs", s.handleListRuns)
	s.router.GET("/api/runs/:id", s.handleGetRun)
	s.router.GET("/api/runs/:id/report", s.handleGetReportHTML)
}

// Start blocks serving HTTP on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.Info("API listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleCreateRun accepts a multipart form with a "file" part (CSV or
// Excel) and an optional "config" part holding the pipeline JSON. The
// pipeline runs synchronously and the report comes back in the
// response body.
func (s *Server) handleCreateRun(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}

	cfg := config.DefaultPipeline()
	if rawCfg := c.PostForm("config"); rawCfg != "" {
		cfg, err = config.ParsePipeline([]byte(rawCfg))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ds, err := s.readUpload(c, fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runner := pipeline.NewRunner(cfg)
	result, err := runner.Run(c.Request.Context(), ds)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsConfigurationError(err) {
			status = http.StatusUnprocessableEntity
		}
		s.persistFailure(c, fileHeader.Filename, cfg, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if s.runs != nil {
		rec := &postgres.RunRecord{
			ID:     result.RunID,
			Source: fileHeader.Filename,
			Status: postgres.RunStatusCompleted,
			Config: cfg,
			Report: result.Report,
		}
		if err := s.runs.Save(c.Request.Context(), rec); err != nil {
			s.log.Error("persist run %s: %v", result.RunID, err)
		}
	}

	c.JSON(http.StatusOK, result.Report)
}

func (s *Server) persistFailure(c *gin.Context, source string, cfg *config.Pipeline, runErr error) {
	if s.runs == nil {
		return
	}
	rec := &postgres.RunRecord{
		ID:           core.NewRunID(),
		Source:       source,
		Status:       postgres.RunStatusFailed,
		ErrorMessage: runErr.Error(),
		Config:       cfg,
	}
	if err := s.runs.Save(c.Request.Context(), rec); err != nil {
		s.log.Error("persist failed run: %v", err)
	}
}

func (s *Server) readUpload(c *gin.Context, fileHeader *multipart.FileHeader) (*dataset.Dataset, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".xlsx", ".xls":
		return ingest.ReadExcel(src, c.PostForm("sheet"))
	default:
		return ingest.ReadCSV(src)
	}
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run storage not configured"})
		return
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	records, err := s.runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": records, "count": len(records)})
}

func (s *Server) handleGetRun(c *gin.Context) {
	rec, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGetReportHTML(c *gin.Context) {
	rec, ok := s.lookupRun(c)
	if !ok {
		return
	}
	if rec.Report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run has no report"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", export.HTML(rec.Report))
}

func (s *Server) lookupRun(c *gin.Context) (*postgres.RunRecord, bool) {
	if s.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run storage not configured"})
		return nil, false
	}
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	rec, err := s.runs.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return rec, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
