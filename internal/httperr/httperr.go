package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const HeaderAuditWarning = "X-Audit-Warning"

// HeaderCommittedCount reports how many rows a failed bulk call still wrote.
const HeaderCommittedCount = "X-Committed-Count"

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFoundResponse(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func UnauthorizedResponse(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// Respond writes err using the status that matches its kind. Non-business
// errors become 500s without leaking their text.
func Respond(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		Internal(c, "internal_error", "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch be.Kind {
	case KindInvalid:
		status = http.StatusBadRequest
	case KindConflict:
		status = http.StatusConflict
	case KindNotFound:
		status = http.StatusNotFound
	case KindTransient:
		status = http.StatusServiceUnavailable
	case KindUnauthorized:
		status = http.StatusUnauthorized
	case KindForbidden:
		status = http.StatusForbidden
	}
	Write(c, status, be.Code, humanize(be.Code))
}

// WarnPartial flags a response whose audit side effect failed. It reports
// whether err was nil or partial, i.e. whether the handler may proceed.
func WarnPartial(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if !IsKind(err, KindPartial) {
		return false
	}
	var be BusinessError
	errors.As(err, &be)
	c.Header(HeaderAuditWarning, be.Code)
	return true
}

func humanize(code string) string {
	return strings.ReplaceAll(code, "_", " ")
}
