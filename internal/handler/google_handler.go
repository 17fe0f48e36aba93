package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/oauth"
	"github.com/prperemyshlev/notes-service/internal/service"
	"go.uber.org/zap"
)

const (
	stateCookie       = "oauth_state"
	stateCookieMaxAge = 600
	callbackPath      = "/api/v1/auth/google/callback"
)

// GoogleAuthenticator runs the authorization code flow
type GoogleAuthenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.GoogleProfile, error)
}

// GoogleHandler handles the server-side Google sign-in redirects
type GoogleHandler struct {
	google        GoogleAuthenticator
	authService   service.AuthService
	frontendURL   string
	secureCookies bool
	logger        *zap.Logger
}

// NewGoogleHandler creates a new Google sign-in handler
func NewGoogleHandler(google GoogleAuthenticator, authService service.AuthService, frontendURL string, secureCookies bool, logger *zap.Logger) *GoogleHandler {
	return &GoogleHandler{
		google:        google,
		authService:   authService,
		frontendURL:   frontendURL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Login redirects to the Google consent page
func (h *GoogleHandler) Login(c *gin.Context) {
	state, err := oauth.NewState()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieMaxAge, callbackPath, "", h.secureCookies, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// Callback finishes the flow and hands the token to the frontend
func (h *GoogleHandler) Callback(c *gin.Context) {
	c.SetCookie(stateCookie, "", -1, callbackPath, "", h.secureCookies, true)

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		h.fail(c, "google_auth_failed", "state mismatch", nil)
		return
	}
	if c.Query("error") != "" || c.Query("code") == "" {
		h.fail(c, "google_auth_failed", "consent denied", nil)
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.fail(c, "google_auth_failed", "exchange failed", err)
		return
	}

	response, err := h.authService.FederatedSignin(c.Request.Context(), &service.FederatedInput{
		Provider:  domain.ProviderGoogle,
		SubjectID: profile.Subject,
		Email:     profile.Email,
		Name:      profile.Name,
		AvatarURL: profile.Picture,
	})
	if err != nil {
		h.fail(c, "auth_failed", "federated signin failed", err)
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?token="+url.QueryEscape(response.Token))
}

func (h *GoogleHandler) fail(c *gin.Context, code, reason string, err error) {
	h.logger.Warn("google sign-in failed", zap.String("reason", reason), zap.Error(err))
	c.Redirect(http.StatusFound, h.frontendURL+"/signin?error="+code)
}
