package api

import (
	"net/http"

	"github.com/gdsingh/skybook/internal/service/reset"
	"github.com/gin-gonic/gin"
)

type ResetHandler struct {
	service reset.ResetUseCase
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func NewResetHandler(service reset.ResetUseCase) *ResetHandler {
	return &ResetHandler{service: service}
}

func (h *ResetHandler) Register(router *gin.RouterGroup) {
	router.POST("/forgot-password", h.forgotPassword)
	router.GET("/verify-reset-token/:token", h.verifyToken)
	router.POST("/reset-password", h.resetPassword)
}

func (h *ResetHandler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	link, err := h.service.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "password reset link generated",
		"reset_link": link,
	})
}

func (h *ResetHandler) verifyToken(c *gin.Context) {
	email, err := h.service.ValidateToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"valid": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "email": email})
}

func (h *ResetHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated"})
}
