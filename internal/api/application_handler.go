package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/riyajha981219/squareboat-job-portal/internal/api/middleware"
	"github.com/riyajha981219/squareboat-job-portal/internal/database"
	"github.com/riyajha981219/squareboat-job-portal/internal/tasks"
)

// TaskEnqueuer is the slice of asynq.Client the handler needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ApplicationHandler handles applying to jobs and the candidate's
// application listing.
type ApplicationHandler struct {
	db       *gorm.DB
	enqueuer TaskEnqueuer
}

// NewApplicationHandler constructs the application handler.
func NewApplicationHandler(db *gorm.DB, enqueuer TaskEnqueuer) *ApplicationHandler {
	return &ApplicationHandler{db: db, enqueuer: enqueuer}
}

// ApplyToJob records one application per (job, candidate) pair and queues
// the two notification emails. The unique index decides duplicates; the
// pre-check only exists for the friendlier 409 on the common path.
func (h *ApplicationHandler) ApplyToJob(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "Unauthenticated.")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("user_id", uint64(user.ID)))

	jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 64)
	if err != nil {
		NotFound(c, "Job not found.")
		return
	}

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, uint(jobID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Job not found.")
			return
		}
		logger.Error("lookup job failed", slog.Any("error", err))
		Internal(c, "Failed to apply to job.")
		return
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&database.Application{}).
		Where("job_id = ? AND candidate_id = ?", job.ID, user.ID).
		Count(&count).Error; err != nil {
		logger.Error("check existing application failed", slog.Any("error", err))
		Internal(c, "Failed to apply to job.")
		return
	}
	if count > 0 {
		Conflict(c, "You have already applied for this job.")
		return
	}

	application := database.Application{
		JobID:       job.ID,
		CandidateID: user.ID,
	}
	if err := h.db.WithContext(ctx).Create(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent duplicate slipped past the pre-check.
			Conflict(c, "You have already applied for this job.")
			return
		}
		logger.Error("create application failed", slog.Any("error", err))
		Internal(c, "Failed to apply to job.")
		return
	}

	h.enqueueNotifications(c, logger, application.ID)

	logger.Info("application created",
		slog.Uint64("job_id", uint64(job.ID)),
		slog.Uint64("application_id", uint64(application.ID)),
	)
	OK(c, http.StatusOK, "Successfully applied to the job. Confirmation emails sent.", nil)
}

// enqueueNotifications hands the mail work to the queue. Delivery is
// best-effort from this side: a failed enqueue is logged, never surfaced,
// and never rolls back the committed application.
func (h *ApplicationHandler) enqueueNotifications(c *gin.Context, logger *slog.Logger, applicationID uint) {
	task, err := tasks.NewApplicationSubmittedTask(applicationID, middleware.GetCorrelationID(c))
	if err != nil {
		logger.Warn("build notification task failed", slog.Any("error", err))
		return
	}
	if _, err := h.enqueuer.Enqueue(task, asynq.MaxRetry(5)); err != nil {
		logger.Warn("enqueue notification task failed", slog.Any("error", err))
	}
}

type appliedJob struct {
	ID          uint      `json:"id"`
	RecruiterID uint      `json:"recruiter_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	AppliedAt   time.Time `json:"applied_at"`
}

// ListAppliedJobs returns the jobs the acting candidate applied to, newest
// application first, each carrying the application timestamp.
func (h *ApplicationHandler) ListAppliedJobs(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "Unauthenticated.")
		return
	}

	jobs := make([]appliedJob, 0)
	if err := h.db.WithContext(c.Request.Context()).
		Table("applications").
		Select("jobs.id, jobs.recruiter_id, jobs.title, jobs.description, jobs.created_at, applications.created_at AS applied_at").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("applications.candidate_id = ?", user.ID).
		Order("applications.created_at DESC").
		Scan(&jobs).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list applied jobs failed", slog.Any("error", err))
		Internal(c, "Failed to retrieve applications.")
		return
	}

	OK(c, http.StatusOK, "Jobs you have applied to retrieved successfully.", jobs)
}
