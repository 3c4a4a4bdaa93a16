package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"review-sentiment/models"
	"review-sentiment/sentiment"
	"review-sentiment/services"
	"review-sentiment/source"
	"review-sentiment/storage"
	"review-sentiment/utils"
)

const maxUploadBytes = 10 * 1024 * 1024

// Handlers holds the API handlers and the current upload episode.
type Handlers struct {
	analyzer   *services.Analyzer
	scorer     services.Scorer
	serviceURL string
	writer     storage.ReviewWriter
	logger     *utils.Logger

	mu      sync.RWMutex
	current *services.Analysis
}

func NewHandlers(analyzer *services.Analyzer, scorer services.Scorer, serviceURL string,
	writer storage.ReviewWriter, logger *utils.Logger) *Handlers {
	return &Handlers{
		analyzer:   analyzer,
		scorer:     scorer,
		serviceURL: serviceURL,
		writer:     writer,
		logger:     logger,
	}
}

// Response is the common JSON envelope.
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Message: "success", Data: data})
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Message: message})
}

// Status reports whether the scoring service answers its liveness probe.
func (h *Handlers) Status(c *gin.Context) {
	err := h.scorer.Ping(c.Request.Context())
	success(c, gin.H{
		"connected": err == nil,
		"url":       h.serviceURL,
	})
}

type analyzeTextRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// AnalyzeText scores one free text under one model.
func (h *Handlers) AnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		errorResponse(c, http.StatusBadRequest, "text is required")
		return
	}
	if req.Model == "" {
		req.Model = string(models.ModelVader)
	}
	model, err := models.ParseModel(req.Model)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.scorer.Score(c.Request.Context(), text, model)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, err.Error())
		return
	}

	success(c, gin.H{
		"texto":       res.Text,
		"modelo":      res.Model,
		"score":       res.Score,
		"sentimiento": res.Label.Display(),
	})
}

// UploadReviews analyzes an uploaded table, sent either as a multipart
// "file" field or as the raw request body, and makes it the current episode.
func (h *Handlers) UploadReviews(c *gin.Context) {
	name, content, err := readUpload(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	lines, err := source.Lines(name, content)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.analyzer.AnalyzeLines(c.Request.Context(), lines)
	if err != nil {
		h.logger.Warn("[server] Upload %s rejected: %v", name, err)
		errorResponse(c, statusFor(err), services.UserMessage(err))
		return
	}

	if h.writer != nil {
		if err := h.writer.Write(analysis.UploadID, analysis.Reviews); err != nil {
			h.logger.Error("[server] Persisting upload %s failed: %v", analysis.UploadID, err)
		}
	}

	h.mu.Lock()
	h.current = analysis
	h.mu.Unlock()

	success(c, analysis)
}

// CurrentReviews returns the current episode with statistics recomputed from its records.
func (h *Handlers) CurrentReviews(c *gin.Context) {
	h.mu.RLock()
	current := h.current
	h.mu.RUnlock()

	if current == nil {
		errorResponse(c, http.StatusNotFound, "no reviews uploaded yet")
		return
	}

	success(c, &services.Analysis{
		UploadID:  current.UploadID,
		CreatedAt: current.CreatedAt,
		Reviews:   current.Reviews,
		Report:    h.analyzer.Aggregator().Aggregate(current.Reviews),
	})
}

func readUpload(c *gin.Context) (string, []byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", nil, errors.New("missing \"file\" field")
		}
		if fh.Size > maxUploadBytes {
			return "", nil, errors.New("file too large (max 10MB)")
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		return fh.Filename, content, err
	}

	content, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes+1))
	if err != nil {
		return "", nil, err
	}
	if len(content) > maxUploadBytes {
		return "", nil, errors.New("file too large (max 10MB)")
	}
	if len(content) == 0 {
		return "", nil, errors.New("empty upload")
	}
	return "upload.csv", content, nil
}

func statusFor(err error) int {
	var colErr *services.ColumnResolutionError
	var connErr *sentiment.ConnectivityError
	switch {
	case errors.As(err, &colErr), errors.Is(err, services.ErrNoValidReviews):
		return http.StatusUnprocessableEntity
	case errors.As(err, &connErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrNoScoredReviews):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
