package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riyajha981219/squareboat-job-portal/internal/api/middleware"
	"github.com/riyajha981219/squareboat-job-portal/internal/database"
)

// JobHandler handles job posting and the recruiter/candidate job listings.
type JobHandler struct {
	db *gorm.DB
}

// NewJobHandler constructs the job handler.
func NewJobHandler(db *gorm.DB) *JobHandler {
	return &JobHandler{db: db}
}

type postJobRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
}

var errNotRecruiter = errors.New("acting user is not a recruiter")

// PostJob creates a job owned by the acting recruiter. The role is
// re-checked against the user row inside the transaction so a stale
// context cannot persist a job owned by a non-recruiter.
func (h *JobHandler) PostJob(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "Unauthenticated.")
		return
	}

	var req postJobRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("user_id", uint64(user.ID)))

	job := database.Job{
		RecruiterID: user.ID,
		Title:       req.Title,
		Description: req.Description,
	}
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner database.User
		if err := tx.First(&owner, user.ID).Error; err != nil {
			return err
		}
		if !owner.IsRecruiter() {
			return errNotRecruiter
		}
		return tx.Create(&job).Error
	})
	if err != nil {
		if errors.Is(err, errNotRecruiter) {
			logger.Info("post job rejected: role changed under request")
			Forbidden(c, "Unauthorized: Only recruiters can post jobs.")
			return
		}
		logger.Error("create job failed", slog.Any("error", err))
		Internal(c, "Failed to post job.")
		return
	}

	logger.Info("job posted", slog.Uint64("job_id", uint64(job.ID)))
	OK(c, http.StatusCreated, "Job posted successfully.", job)
}

// ListJobs returns every job, newest first.
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs := make([]database.Job, 0)
	if err := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list jobs failed", slog.Any("error", err))
		Internal(c, "Failed to retrieve jobs.")
		return
	}

	OK(c, http.StatusOK, "All available jobs retrieved successfully.", jobs)
}

type applicantEntry struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AppliedAt time.Time `json:"applied_at"`
}

type jobWithApplicants struct {
	JobID      uint             `json:"job_id"`
	JobTitle   string           `json:"job_title"`
	Applicants []applicantEntry `json:"applicants"`
}

// GetApplicants returns every job owned by the acting recruiter together
// with its applicants. Only id, name, email and the application timestamp
// of each applicant are exposed. Jobs without applicants carry an empty list.
func (h *JobHandler) GetApplicants(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "Unauthenticated.")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("user_id", uint64(user.ID)))

	var jobs []database.Job
	if err := h.db.WithContext(ctx).
		Where("recruiter_id = ?", user.ID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		logger.Error("list posted jobs failed", slog.Any("error", err))
		Internal(c, "Failed to retrieve applicants.")
		return
	}

	data := make([]jobWithApplicants, 0, len(jobs))
	for _, job := range jobs {
		applicants := make([]applicantEntry, 0)
		if err := h.db.WithContext(ctx).
			Table("applications").
			Select("users.id, users.name, users.email, applications.created_at AS applied_at").
			Joins("JOIN users ON users.id = applications.candidate_id").
			Where("applications.job_id = ?", job.ID).
			Order("applications.created_at ASC").
			Scan(&applicants).Error; err != nil {
			logger.Error("list applicants failed",
				slog.Uint64("job_id", uint64(job.ID)),
				slog.Any("error", err),
			)
			Internal(c, "Failed to retrieve applicants.")
			return
		}

		data = append(data, jobWithApplicants{
			JobID:      job.ID,
			JobTitle:   job.Title,
			Applicants: applicants,
		})
	}

	OK(c, http.StatusOK, "Applicants for your jobs retrieved successfully.", data)
}
