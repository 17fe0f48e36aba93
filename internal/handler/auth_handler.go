package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/dto"
	"github.com/prperemyshlev/notes-service/internal/service"
	"github.com/prperemyshlev/notes-service/internal/utils"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles the first signup step
// @Summary Start signup
// @Description Create or refresh an unverified account and email it a one-time code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup request"
// @Success 200 {object} dto.OTPSentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	dob, err := utils.ParseDate(req.DateOfBirth)
	if err != nil {
		writeBindError(c, err)
		return
	}

	email, err := h.authService.Signup(c.Request.Context(), &service.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: dob,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OTPSentResponse{
		Message: "OTP sent successfully to your email",
		Email:   email,
	})
}

// VerifyOTP completes a signup
// @Summary Verify signup OTP
// @Description Verify the emailed code, mark the email verified and issue a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Verification request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	response, err := h.authService.VerifySignup(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Message = "Email verified successfully"
	c.JSON(http.StatusOK, response)
}

// Signin handles a signin code request
// @Summary Request signin OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Signin request"
// @Success 200 {object} dto.OTPSentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	email, err := h.authService.Signin(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OTPSentResponse{
		Message: "OTP sent successfully to your email",
		Email:   email,
	})
}

// SigninVerify exchanges a signin code for a token
// @Summary Verify signin OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Verification request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/signin-verify [post]
func (h *AuthHandler) SigninVerify(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	response, err := h.authService.VerifySignin(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Message = "Signed in successfully"
	c.JSON(http.StatusOK, response)
}

// ResendOTP issues a replacement code
// @Summary Resend OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Resend request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "OTP resent successfully",
	})
}

// Federated signs in with an identity already verified by a federated provider.
// The provider defaults to firebase.
// @Summary Federated signin
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.FederatedRequest true "Federated assertion"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/federated [post]
func (h *AuthHandler) Federated(c *gin.Context) {
	var req dto.FederatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	provider := domain.AuthProvider(req.Provider)
	if provider == "" {
		provider = domain.ProviderFirebase
	}

	h.federated(c, &service.FederatedInput{
		Provider:  provider,
		SubjectID: req.SubjectID,
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.Avatar,
	})
}

// GoogleFirebase is the firebase flavour of Federated keyed on firebaseUid
func (h *AuthHandler) GoogleFirebase(c *gin.Context) {
	var req dto.FirebaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	h.federated(c, &service.FederatedInput{
		Provider:  domain.ProviderFirebase,
		SubjectID: req.FirebaseUID,
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.Avatar,
	})
}

func (h *AuthHandler) federated(c *gin.Context, in *service.FederatedInput) {
	response, err := h.authService.FederatedSignin(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Message = "Google authentication successful"
	c.JSON(http.StatusOK, response)
}
