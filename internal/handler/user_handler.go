package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/dto"
	"github.com/prperemyshlev/notes-service/internal/service"
	"github.com/prperemyshlev/notes-service/internal/utils"
	"go.uber.org/zap"
)

// UserHandler handles profile requests
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new profile handler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// GetProfile returns the caller's profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	caller := currentUser(c)
	if caller == nil {
		writeError(c, h.logger, domain.ErrNoToken)
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), caller.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Profile retrieved successfully",
		User:    dto.NewUserResponse(user),
	})
}

// UpdateProfile changes the caller's name and date of birth
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	caller := currentUser(c)
	if caller == nil {
		writeError(c, h.logger, domain.ErrNoToken)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var dob *time.Time
	if req.DateOfBirth != nil {
		parsed, err := utils.ParseDate(*req.DateOfBirth)
		if err != nil {
			writeBindError(c, err)
			return
		}
		dob = &parsed
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), caller.ID, req.Name, dob)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Profile updated successfully",
		User:    dto.NewUserResponse(user),
	})
}
