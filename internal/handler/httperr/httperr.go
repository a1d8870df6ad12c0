package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key carrying the correlation id of the current request.
const RequestIDKey = "request_id"

// Response is the error body shared by every internal route.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
	Detail    any    `json:"detail,omitempty"`
}

var codes = map[int]string{
	http.StatusBadRequest:          "invalid_request",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusNotFound:            "not_found",
	http.StatusConflict:            "invalid_state",
	http.StatusBadGateway:          "gateway_error",
	http.StatusServiceUnavailable:  "gateway_unavailable",
	http.StatusInternalServerError: "internal",
}

// Code returns the machine-readable error code reported for status.
func Code(status int) string {
	if code, ok := codes[status]; ok {
		return code
	}
	return "error"
}

func New(c *gin.Context, status int, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Code = Code(status)
	resp.Error.Message = msg
	if c != nil {
		resp.RequestID = c.GetString(RequestIDKey)
	}
	return resp
}

// AbortWithError records err on the context for the logging middleware and
// writes the public response. The cause is never rendered to the caller.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := New(c, status, msg, detail)
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort writes an error response that has no underlying cause, such as a missing credential.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, New(c, status, msg, nil))
}
