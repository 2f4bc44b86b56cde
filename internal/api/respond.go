package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/timesheet/internal/apperr"
)

// ok sends the success envelope.
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondErr logs err and sends its public message with the mapped status.
func (s *Server) respondErr(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log().Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
	} else {
		s.log().Debug("request rejected", "path", c.Request.URL.Path, "status", status, "err", err)
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

// bind decodes the JSON body into v, reporting malformed input as a
// validation error.
func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return false
	}
	return true
}
