package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger логирует каждый запрос вместе с приватными ошибками, накопленными обработчиками.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := l.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"clientIP": c.ClientIP(),
		})

		privateErrs := c.Errors.ByType(gin.ErrorTypePrivate)
		if len(privateErrs) > 0 {
			entry.WithField("errors", privateErrs.String()).Error("request failed")
			return
		}
		entry.Info("request")
	}
}
