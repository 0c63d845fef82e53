package response

import "github.com/gin-gonic/gin"

const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeStorageError    = "STORAGE_ERROR"
	CodeInternal        = "INTERNAL"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

// OK writes the payload as-is; endpoint bodies are plain shapes, not a
// wrapper envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// Error writes the structured error body {"error":{"code","message"}}.
func Error(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, errorBody{Error: errorDetail{Code: code, Message: message}})
}
