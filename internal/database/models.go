package database

import "time"

// Role distinguishes the two account types.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// User represents an account. The password hash never serializes to JSON.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name            string     `gorm:"size:255;not null" json:"name"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	Role            Role       `gorm:"size:16;not null" json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
}

// IsRecruiter reports whether the user may post jobs and view applicants.
func (u User) IsRecruiter() bool { return u.Role == RoleRecruiter }

// IsCandidate reports whether the user may browse jobs and apply.
func (u User) IsCandidate() bool { return u.Role == RoleCandidate }

// Job is a posting owned by a recruiter.
type Job struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RecruiterID uint   `gorm:"index;not null" json:"recruiter_id"`
	Recruiter   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
}

// Application joins a candidate to a job they applied to.
// The composite unique index is the authority on "apply at most once":
// concurrent duplicates fail there, not at the handler's pre-check.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobID       uint `gorm:"not null;uniqueIndex:idx_applications_job_candidate" json:"job_id"`
	CandidateID uint `gorm:"not null;uniqueIndex:idx_applications_job_candidate" json:"candidate_id"`
	Job         Job  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Candidate   User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
