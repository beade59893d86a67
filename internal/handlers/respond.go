package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"driver-rewards/internal/ebay"
	"driver-rewards/internal/logger"
	"driver-rewards/internal/middleware"
	"driver-rewards/internal/services"
)

// respondError maps service errors onto HTTP statuses. Anything unclassified is
// logged and reported as a generic server error.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ebay.ErrUpstream):
		logger.Log.Warn("Marketplace search failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Marketplace search failed"})
		return
	}

	if status == http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "Server error"})
		return
	}

	var serviceErr *services.Error
	message := err.Error()
	if errors.As(err, &serviceErr) {
		message = serviceErr.Message
	}
	c.JSON(status, gin.H{"error": message})
}

// bindJSON decodes the body into req and answers 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input",
			"details": bindingDetails(err),
		})
		return false
	}
	return true
}

// bindingDetails lists field failures from the validator, or the decode error
func bindingDetails(err error) gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return gin.H{"formErrors": []string{err.Error()}}
	}

	fields := gin.H{}
	for _, fe := range verrs {
		name := fe.Field()
		msg := fe.Tag()
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		if existing, ok := fields[name].([]string); ok {
			fields[name] = append(existing, msg)
		} else {
			fields[name] = []string{msg}
		}
	}
	return gin.H{"fieldErrors": fields}
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// pick returns the first non-nil value, used for fields accepted under two JSON names
func pick[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
