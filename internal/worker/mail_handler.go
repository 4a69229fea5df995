package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/riyajha981219/squareboat-job-portal/internal/database"
	"github.com/riyajha981219/squareboat-job-portal/internal/mailer"
	"github.com/riyajha981219/squareboat-job-portal/internal/tasks"
)

// MailTaskHandler consumes application-submitted tasks and sends the
// candidate confirmation and recruiter notification emails.
type MailTaskHandler struct {
	db     *gorm.DB
	mailer mailer.Sender
	logger *slog.Logger
}

// NewMailTaskHandler creates the mail task handler.
func NewMailTaskHandler(db *gorm.DB, sender mailer.Sender, logger *slog.Logger) *MailTaskHandler {
	return &MailTaskHandler{db: db, mailer: sender, logger: logger}
}

// ProcessTask implements asynq.Handler. A send failure returns the error so
// asynq retries; a vanished application drops the task.
func (h *MailTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ApplicationSubmittedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("application_id", uint64(payload.ApplicationID)),
	)

	var application database.Application
	if err := h.db.WithContext(ctx).First(&application, payload.ApplicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("application not found, dropping task")
			return nil
		}
		log.Error("query application failed", slog.Any("error", err))
		return err
	}

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, application.JobID).Error; err != nil {
		log.Error("query job failed", slog.Any("error", err))
		return err
	}

	var candidate database.User
	if err := h.db.WithContext(ctx).First(&candidate, application.CandidateID).Error; err != nil {
		log.Error("query candidate failed", slog.Any("error", err))
		return err
	}

	if err := h.mailer.Send(
		candidate.Email,
		fmt.Sprintf("Confirmation: You Applied for %s", job.Title),
		candidateMailBody(job, candidate),
	); err != nil {
		log.Error("send candidate mail failed", slog.Any("error", err))
		return err
	}

	var recruiter database.User
	switch err := h.db.WithContext(ctx).First(&recruiter, job.RecruiterID).Error; {
	case err == nil:
		if err := h.mailer.Send(
			recruiter.Email,
			fmt.Sprintf("New Applicant for Your Job: %s", job.Title),
			recruiterMailBody(job, candidate, recruiter),
		); err != nil {
			log.Error("send recruiter mail failed", slog.Any("error", err))
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn("recruiter no longer exists, skipping recruiter mail",
			slog.Uint64("recruiter_id", uint64(job.RecruiterID)),
		)
	default:
		log.Error("query recruiter failed", slog.Any("error", err))
		return err
	}

	log.Info("application notification emails sent")
	return nil
}

func candidateMailBody(job database.Job, candidate database.User) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour application for %q has been received.\n\nJob description:\n%s\n\nGood luck!\n",
		candidate.Name, job.Title, job.Description,
	)
}

func recruiterMailBody(job database.Job, candidate, recruiter database.User) string {
	return fmt.Sprintf(
		"Hi %s,\n\n%s (%s) has applied to your job %q.\n\nYou can review all applicants in your dashboard.\n",
		recruiter.Name, candidate.Name, candidate.Email, job.Title,
	)
}
