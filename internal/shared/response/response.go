package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the single error shape of the API.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Success writes data as the JSON body.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Error writes {"detail": message}.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Detail: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message)
}
