package api

import (
	"net/http"

	"github.com/gdsingh/skybook/internal/service/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service users.UserUseCase
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
}

func (h *UserHandler) register(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user_id": user.ID,
		"email":   user.Email,
	})
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user_id": user.ID,
		"name":    user.Name,
	})
}

func (h *UserHandler) logout(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}
