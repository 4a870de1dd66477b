package util

import (
	"errors"
	"net/http"

	"interview_prep_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.L().Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	InternalServerError(c)
}

// StatusOf 把业务错误映射为 HTTP 状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrFeedbackNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrIncompleteRecord), errors.Is(err, ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionComplete):
		return http.StatusConflict
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrEvaluatorUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// RespondError 按错误类型返回，未知错误记录日志后返回 500
func RespondError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	if status == http.StatusBadGateway {
		logger.L().Warn("evaluator unavailable", zap.Error(err))
		Error(c, status, ErrEvaluatorUnavailable.Error())
		return
	}
	Error(c, status, err.Error())
}
