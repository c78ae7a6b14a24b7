package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vmunrayos/multi-workspace/internal/auth"
	"github.com/vmunrayos/multi-workspace/internal/logger"
	"github.com/vmunrayos/multi-workspace/internal/session"
)

type Handler struct {
	verifier auth.CredentialVerifier
	sessions session.Store
	cookies  session.CookieOptions
}

func NewHandler(
	verifier auth.CredentialVerifier,
	sessions session.Store,
	cookies session.CookieOptions,
) *Handler {
	return &Handler{
		verifier: verifier,
		sessions: sessions,
		cookies:  cookies,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/authentication/login/otp", h.loginOTP)
	api.POST("/authentication/login/admin", h.loginAdmin)
	api.POST("/authentication/logout", h.logout)
	api.GET("/session/me", h.currentSession)
}

type otpLoginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Otp         string `json:"otp" binding:"required"`
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) loginOTP(c *gin.Context) {
	var req otpLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	record, err := h.verifier.VerifyOTP(
		c.Request.Context(),
		req.PhoneNumber,
		req.Otp,
	)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid phone number or OTP.",
			})
			return
		}
		respondInternal(c, "otp verification failed", err)
		return
	}

	h.establishSession(c, record, "OTP login successful.")
}

func (h *Handler) loginAdmin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	record, err := h.verifier.VerifyAdmin(
		c.Request.Context(),
		req.Email,
		req.Password,
	)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid admin credentials.",
			})
			return
		}
		respondInternal(c, "admin verification failed", err)
		return
	}

	h.establishSession(c, record, "Admin login successful.")
}

// establishSession persists the record and attaches the cookie. No
// cookie is set on any failure path before this point.
func (h *Handler) establishSession(c *gin.Context, record *session.Record, message string) {
	cookieValue, err := h.sessions.Create(c.Request.Context(), *record)
	if err != nil {
		respondInternal(c, "failed to create session", err)
		return
	}

	session.SetCookie(c.Writer, cookieValue, h.cookies)

	logger.Info("login succeeded", map[string]any{
		"principal": record.ID,
		"role":      record.Role,
	})

	c.JSON(http.StatusOK, gin.H{
		"user":    record,
		"message": message,
	})
}

func (h *Handler) currentSession(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		respondNoSession(c)
		return
	}

	record, err := h.sessions.Get(c.Request.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, session.ErrCorrupt) {
			// Anomalous, but indistinguishable from "no session" to
			// the caller.
			logger.Error("corrupt session record", map[string]any{
				"error": err.Error(),
			})
			respondNoSession(c)
			return
		}
		respondInternal(c, "session lookup failed", err)
		return
	}
	if record == nil {
		respondNoSession(c)
		return
	}

	if err := h.sessions.Touch(c.Request.Context(), cookie.Value); err != nil {
		logger.Warn("session touch failed", map[string]any{
			"error": err.Error(),
		})
	}

	c.JSON(http.StatusOK, record)
}

// logout destroys the session if one exists and always clears the
// cookie. Logging out without a session is not an error.
func (h *Handler) logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(c.Request.Context(), cookie.Value); err != nil {
			logger.Warn("session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.ClearCookie(c.Writer, h.cookies)

	c.JSON(http.StatusOK, gin.H{
		"message": "Session cleared.",
	})
}

func respondNoSession(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"message": "No active session.",
	})
}

func respondInternal(c *gin.Context, msg string, err error) {
	logger.Error(msg, map[string]any{
		"error": err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "Service unavailable.",
	})
}
