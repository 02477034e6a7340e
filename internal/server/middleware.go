package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	logx "github.com/terra-tattva/storefront/pkg/logger"
)

const (
	ctxKeySessionID = "session_id"
	ctxKeyRequestID = "request_id"
)

// requestLogger tags each request with an id and logs it on completion.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set(ctxKeyRequestID, requestID)
		start := time.Now()

		c.Next()

		l := logx.With().Str("http.req.id", requestID).Logger()
		event := l.Debug()
		if c.Writer.Status() >= 500 {
			event = l.Error()
		}
		event.
			Str("http.req.method", c.Request.Method).
			Str("http.req.path", c.Request.URL.Path).
			Str("session", c.GetString(ctxKeySessionID)).
			Int("http.resp.status", c.Writer.Status()).
			Int("http.resp.bytes", c.Writer.Size()).
			Int64("http.resp.took_ms", time.Since(start).Milliseconds()).
			Msg("request complete")
	}
}

// ensureSession reads the session cookie, issuing a fresh id when it is
// missing or not a UUID.
func ensureSession(cookieName string, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, sessionID, maxAge, "/", "", false, true)
		}
		c.Set(ctxKeySessionID, sessionID)
		c.Next()
	}
}
