package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salmon131/my-reporter-assistant/internal/model"
)

type JobStore interface {
	CreateJob(topic string) (*model.AnalysisJob, error)
	GetJob(id int64) (*model.AnalysisJob, error)
	GetLastError(jobID int64) (*model.ProcessingError, error)
	UpdateStatus(id int64, status string) error
}

type JobQueue interface {
	Push(ctx context.Context, id string) error
}

type JobHandler struct {
	repository JobStore
	queue      JobQueue
}

func NewJobHandler(repository JobStore, queue JobQueue) *JobHandler {
	return &JobHandler{repository: repository, queue: queue}
}

func (h *JobHandler) PostAnalyzeJob(c *gin.Context) {
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}

	log := requestLogger(c)

	job, err := h.repository.CreateJob(topic)
	if err != nil {
		log.Error("error creating analysis job", "topic", topic, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := h.queue.Push(c.Request.Context(), strconv.FormatInt(job.ID, 10)); err != nil {
		log.Error("error pushing job to queue", "job_id", job.ID, "error", err)
		if err := h.repository.UpdateStatus(job.ID, model.StatusFailed); err != nil {
			log.Error("error marking job failed", "job_id", job.ID, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Queue error"})
		return
	}

	log.Info("analysis job queued", "job_id", job.ID, "topic", topic)
	c.JSON(http.StatusAccepted, JobAcceptedResponse{JobID: job.ID, Status: job.Status})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	jobID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
		return
	}

	log := requestLogger(c)

	job, err := h.repository.GetJob(jobID)
	if err != nil {
		log.Error("error fetching job", "job_id", jobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	res := JobResponse{
		ID:         job.ID,
		Topic:      job.Topic,
		Status:     job.Status,
		ErrorCount: job.ErrorCount,
		CreatedAt:  job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  job.UpdatedAt.Format(time.RFC3339),
	}

	if job.ErrorCount > 0 {
		lastErr, err := h.repository.GetLastError(jobID)
		if err != nil {
			log.Error("error fetching last job error", "job_id", jobID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if lastErr != nil {
			res.LastError = lastErr.ErrorMessage
		}
	}

	c.JSON(http.StatusOK, res)
}
