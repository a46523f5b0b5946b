package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// AddUserRequest represents the HTTP request body for creating a user.
// Length limits are enforced by the usecase.
type AddUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// errNullUser rejects a JSON null where a user object is expected.
var errNullUser = errors.New("user must be a JSON object, not null")

// errNullBatch rejects a JSON null where an array of users is expected.
var errNullBatch = errors.New("users must be a JSON array, not null")

// UnmarshalJSON rejects null, which encoding/json would otherwise leave as a zero value.
func (r *AddUserRequest) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullUser
	}
	type plain AddUserRequest
	return json.Unmarshal(data, (*plain)(r))
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AddUser handles POST /addUser and responds with the new id.
func (h *UserHandler) AddUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add user request", zap.Error(err))
		h.bindError(c, err)
		return
	}

	resp, err := h.uc.AddUser(c.Request.Context(), user.AddUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.ID)
}

// AddUsers handles POST /addUsers and responds with the number of users saved.
func (h *UserHandler) AddUsers(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req []AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add users request", zap.Error(err))
		h.bindError(c, err)
		return
	}
	// null decodes to a nil slice; [] does not
	if req == nil {
		log.Warn("Invalid add users request", zap.Error(errNullBatch))
		h.bindError(c, errNullBatch)
		return
	}

	users := make([]user.AddUserRequest, len(req))
	for i, u := range req {
		users[i] = user.AddUserRequest{Name: u.Name, Email: u.Email}
	}

	resp, err := h.uc.AddUsers(c.Request.Context(), user.AddUsersRequest{Users: users})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Count)
}

// All handles GET /all
func (h *UserHandler) All(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = UserResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
		}
	}

	c.JSON(http.StatusOK, users)
}

// Count handles GET /count
func (h *UserHandler) Count(c *gin.Context) {
	resp, err := h.uc.CountUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp.Total)
}

// GetUser handles GET /user/:userId
func (h *UserHandler) GetUser(c *gin.Context) {
	idStr := c.Param("userId")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		logger.WithContext(c.Request.Context(), h.log).Warn("Invalid user ID", zap.String("id", idStr))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a positive integer",
		})
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:    resp.ID,
		Name:  resp.Name,
		Email: resp.Email,
	})
}

// bindError reports a body that could not be decoded.
func (h *UserHandler) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "payload_too_large",
			Message: "Request body must not exceed " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
		})
		return
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "Request body must be valid JSON: " + err.Error(),
	})
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status := apperrors.HTTPStatusOf(err)

	switch {
	case apperrors.IsValidation(err):
		c.JSON(status, ErrorResponse{Error: "validation_error", Message: err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(status, ErrorResponse{Error: "not_found", Message: err.Error()})
	default:
		logger.WithContext(c.Request.Context(), h.log).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
