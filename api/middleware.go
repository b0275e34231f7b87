package api

import (
	"net/http"
	"strings"

	"github.com/gdsingh/skybook/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionContextKey = "session"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// Auth resolves the bearer token into a session and aborts with 401 when
// it is missing or stale.
func Auth(service users.UserUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := service.Authorize(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func currentSession(c *gin.Context) *users.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*users.Session)
	return sess
}
