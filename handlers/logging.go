package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// requestIDKey is the context key router.NewRouter's request id
// middleware stores the id under. The same id goes out in X-Request-Id
// and into the crud/http access log.
const requestIDKey = "request_id"

// requestLogger returns the package logger tagged with the request's id.
func requestLogger(c *gin.Context) *logrus.Entry {
	return logger.WithContext(c.Request.Context()).
		WithField("request_id", c.GetString(requestIDKey))
}
