package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/car-rental/pkg/logger"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request. RequestID echoes the correlation ID
// so a client report can be matched with server logs.
type ErrorInfo struct {
	Code      int               `json:"code"`
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Meta carries list pagination
type Meta struct {
	Limit      int   `json:"limit,omitempty"`
	Offset     int   `json:"offset,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorResponse answers with a plain message and no error code
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	writeError(c, &ErrorInfo{Code: statusCode, Message: message})
}

// AppErrorResponse answers with the status, code and field details of err
func AppErrorResponse(c *gin.Context, err *AppError) {
	writeError(c, &ErrorInfo{
		Code:      err.Code,
		ErrorCode: err.ErrorCode,
		Message:   err.Message,
		Fields:    err.Fields,
	})
}

func writeError(c *gin.Context, info *ErrorInfo) {
	if c.Request != nil {
		info.RequestID = logger.CorrelationIDFromContext(c.Request.Context())
	}
	c.JSON(info.Code, Response{Success: false, Error: info})
}
