package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/middleware"
)

const verifierCookie = "sb-code-verifier"

func (h *Handler) loginRedirect(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.opts.FrontendURL+"/login?error="+url.QueryEscape(reason))
}

// AuthCallback đổi mã OAuth lấy phiên, lưu cookie rồi chuyển tới onboarding/dashboard.
func (h *Handler) AuthCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		h.loginRedirect(c, reason)
		return
	}
	code := c.Query("code")
	if code == "" {
		h.loginRedirect(c, "no_code_provided")
		return
	}
	verifier := c.Query("code_verifier")
	if verifier == "" {
		verifier, _ = c.Cookie(verifierCookie)
	}

	session, next, err := h.svc.SignIn(c.Request.Context(), code, verifier)
	if err != nil {
		h.log.Warn("auth code exchange failed", zap.Error(err))
		h.loginRedirect(c, "auth_code_exchange_failed")
		return
	}

	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = 3600
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.AccessToken, maxAge, "/", "", h.opts.SecureCookies, true)
	c.SetCookie(verifierCookie, "", -1, "/", "", h.opts.SecureCookies, true)
	c.Redirect(http.StatusFound, h.opts.FrontendURL+next)
}

func (h *Handler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.opts.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "signed out", "redirect": "/login"})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), viewer(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type onboardingRequest struct {
	Grade *int `json:"grade" binding:"required"`
}

func (h *Handler) CompleteOnboarding(c *gin.Context) {
	var req onboardingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.svc.CompleteOnboarding(c.Request.Context(), viewer(c), *req.Grade)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "redirect": "/dashboard"})
}
