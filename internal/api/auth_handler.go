package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riyajha981219/squareboat-job-portal/internal/api/middleware"
	"github.com/riyajha981219/squareboat-job-portal/internal/auth"
	"github.com/riyajha981219/squareboat-job-portal/internal/database"
)

// AuthHandler handles registration, login, logout and the current-user lookup.
type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(db *gorm.DB, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	Role                 string `json:"role" binding:"required,oneof=candidate recruiter"`
}

type authenticatedResponse struct {
	User        database.User `json:"user"`
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
}

// Register creates a new account and issues its first token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("email", req.Email))

	var existing database.User
	if err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		logger.Info("register rejected: email already taken")
		ValidationFailed(c, map[string][]string{
			"email": {"The email has already been taken."},
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("register lookup failed", slog.Any("error", err))
		Internal(c, "Could not register user. Please try again.")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "Could not register user. Please try again.")
		return
	}

	user := database.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         database.Role(req.Role),
	}

	// The token is issued inside the transaction so a Redis failure rolls
	// back the user row: either both exist or neither does.
	var token string
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		issued, err := h.tokens.Issue(ctx, user.ID)
		if err != nil {
			return err
		}
		token = issued
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Info("register rejected: email unique index hit")
			ValidationFailed(c, map[string][]string{
				"email": {"The email has already been taken."},
			})
			return
		}
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c, "Could not register user. Please try again.")
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)), slog.String("role", req.Role))
	OK(c, http.StatusCreated, "User registered successfully.", authenticatedResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials, revokes every prior token for the user and
// issues a fresh one. Which check failed is never disclosed.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("email", req.Email))

	var user database.User
	if err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			Unauthorized(c, "Invalid login credentials.")
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "Could not log in. Please try again.")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		Unauthorized(c, "Invalid login credentials.")
		return
	}

	// Revoke-then-issue must stay in this order: each login invalidates
	// every session that came before it.
	if err := h.tokens.RevokeAll(ctx, user.ID); err != nil {
		logger.Error("revoke prior tokens failed", slog.Any("error", err))
		Internal(c, "Could not log in. Please try again.")
		return
	}
	token, err := h.tokens.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("issue token failed", slog.Any("error", err))
		Internal(c, "Could not log in. Please try again.")
		return
	}

	logger.Info("user logged in", slog.Uint64("user_id", uint64(user.ID)))
	OK(c, http.StatusOK, "Login successful.", authenticatedResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

// Logout revokes only the token the request authenticated with.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.CurrentToken(c)
	if !ok {
		Unauthorized(c, "Unauthenticated.")
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), token); err != nil {
		h.loggerFromContext(c).Error("revoke token failed", slog.Any("error", err))
		Internal(c, "Could not log out. Please try again.")
		return
	}

	OK(c, http.StatusOK, "Logged out successfully.", nil)
}

// User returns the authenticated user's public profile.
func (h *AuthHandler) User(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "Unauthenticated.")
		return
	}
	OK(c, http.StatusOK, "Authenticated user retrieved successfully.", user)
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
