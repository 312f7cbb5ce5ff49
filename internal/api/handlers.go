package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"homeval/server/internal/acquisition"
	"homeval/server/internal/database"
	"homeval/server/internal/geometry"
	"homeval/server/internal/models"
	"homeval/server/internal/queue"
	"homeval/server/internal/valuation"
)

// Store persists evaluation history
type Store interface {
	Save(ctx context.Context, rec *models.EvaluationRecord) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.EvaluationRecord, error)
	GetByID(ctx context.Context, id string) (*models.EvaluationRecord, error)
	Delete(ctx context.Context, id, sessionID string) error
}

// Runner evaluates a validated request into a record
type Runner interface {
	Run(ctx context.Context, id string, req models.EvaluationRequest) (*models.EvaluationRecord, error)
}

// Enqueuer accepts batches of evaluation jobs
type Enqueuer interface {
	Push(jobs []*models.EvaluationJob) error
}

type Handler struct {
	store        Store
	runner       Runner
	queue        Enqueuer
	defaults     valuation.Defaults
	maxBatchSize int
	logger       *logrus.Logger
}

type BatchRequest struct {
	Requests []models.EvaluationRequest `json:"requests" binding:"required"`
}

func NewHandler(store Store, runner Runner, queue Enqueuer, defaults valuation.Defaults, maxBatchSize int, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		store:        store,
		runner:       runner,
		queue:        queue,
		defaults:     defaults,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateEvaluation(c *gin.Context) {
	var req models.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse evaluation request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.runner.Run(c.Request.Context(), "", req)
	if err != nil {
		if errors.Is(err, acquisition.ErrNoInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to evaluate property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate property"})
		return
	}

	if err := h.store.Save(c.Request.Context(), rec); err != nil {
		h.logger.WithError(err).WithField("evaluation_id", rec.ID).Error("Failed to save evaluation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save evaluation"})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListEvaluations(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}

	records, err := h.store.ListBySession(c.Request.Context(), sessionID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list evaluations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list evaluations"})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetEvaluation(c *gin.Context) {
	rec, ok := h.loadEvaluation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetEvaluationGeoJSON(c *gin.Context) {
	rec, ok := h.loadEvaluation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, geometry.EvaluationFeatures(*rec))
}

func (h *Handler) DeleteEvaluation(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	err := h.store.Delete(c.Request.Context(), c.Param("id"), sessionID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete evaluation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete evaluation"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateBatch(c *gin.Context) {
	var batch BatchRequest
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.logger.WithError(err).Error("Failed to parse batch request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(batch.Requests) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requests must not be empty"})
		return
	}
	if h.maxBatchSize > 0 && len(batch.Requests) > h.maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d requests per batch", h.maxBatchSize)})
		return
	}

	jobs := make([]*models.EvaluationJob, 0, len(batch.Requests))
	ids := make([]string, 0, len(batch.Requests))
	for i := range batch.Requests {
		req := batch.Requests[i]
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("request %d: %v", i, err)})
			return
		}
		job := &models.EvaluationJob{ID: uuid.NewString(), Request: req}
		jobs = append(jobs, job)
		ids = append(ids, job.ID)
	}

	if err := h.queue.Push(jobs); err != nil {
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Evaluation queue is unavailable, retry later"})
			return
		}
		h.logger.WithError(err).Error("Failed to enqueue batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue batch"})
		return
	}

	h.logger.WithField("batch_size", len(jobs)).Info("Batch evaluation queued")
	c.JSON(http.StatusAccepted, gin.H{"job_ids": ids})
}

func (h *Handler) GetDefaultAssumptions(c *gin.Context) {
	raw := c.Query("intent")
	if raw == "" {
		all := make(map[models.Intent]models.Assumptions, len(models.Intents))
		for _, intent := range models.Intents {
			all[intent] = h.defaults.For(intent)
		}
		c.JSON(http.StatusOK, all)
		return
	}

	intent, err := models.ParseIntent(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.defaults.For(intent))
}

func (h *Handler) loadEvaluation(c *gin.Context) (*models.EvaluationRecord, bool) {
	rec, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation not found"})
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get evaluation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get evaluation"})
		return nil, false
	}
	return rec, true
}
