package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksrami99/video-tube/internal/logger"
)

// Response is the success envelope. Existing clients depend on this exact
// shape, so the field set must not change.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
	})
}

// Fail is the single place errors are rendered for gin handlers. Internal
// failures are logged with their cause; the client only ever sees the
// kind's message and status.
func Fail(c *gin.Context, err error) {
	e := From(err)
	if e.Kind == KindInternal {
		logger.Error("request failed", map[string]any{
			"path":  c.Request.URL.Path,
			"error": e.Error(),
		})
	}
	c.AbortWithStatusJSON(e.Kind.Status(), ErrorResponse{
		StatusCode: e.Kind.Status(),
		Message:    e.Message,
		Success:    false,
	})
}

// WriteError renders the failure envelope on a bare http.ResponseWriter,
// for middleware running outside gin.
func WriteError(w http.ResponseWriter, err error) {
	e := From(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Kind.Status())
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		StatusCode: e.Kind.Status(),
		Message:    e.Message,
		Success:    false,
	})
}
