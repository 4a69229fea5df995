package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riyajha981219/squareboat-job-portal/internal/api/middleware"
	"github.com/riyajha981219/squareboat-job-portal/internal/auth"
	"github.com/riyajha981219/squareboat-job-portal/internal/database"
)

// RegisterRoutes wires every endpoint. Role requirements live here, one
// place, instead of inside the handlers.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	tokens *auth.TokenService,
	enqueuer TaskEnqueuer,
	logger *slog.Logger,
) {
	authHandler := NewAuthHandler(db, tokens, logger)
	jobHandler := NewJobHandler(db)
	applicationHandler := NewApplicationHandler(db, enqueuer)

	authMiddleware := middleware.AuthMiddleware(tokens, db)
	candidateOnly := func(action string) gin.HandlerFunc {
		return middleware.RequireRole(database.RoleCandidate, action)
	}
	recruiterOnly := func(action string) gin.HandlerFunc {
		return middleware.RequireRole(database.RoleRecruiter, action)
	}

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)

	authed := router.Group("")
	authed.Use(authMiddleware)
	{
		authed.POST("/logout", authHandler.Logout)
		authed.GET("/user", authHandler.User)

		authed.GET("/jobs", candidateOnly("view all jobs"), jobHandler.ListJobs)
		authed.POST("/jobs", recruiterOnly("post jobs"), jobHandler.PostJob)
		authed.POST("/jobs/:job_id/apply", candidateOnly("apply to jobs"), applicationHandler.ApplyToJob)
		authed.GET("/my-applications", candidateOnly("view their applications"), applicationHandler.ListAppliedJobs)
		authed.GET("/my-posted-jobs/applicants", recruiterOnly("view applicants"), jobHandler.GetApplicants)
	}
}
