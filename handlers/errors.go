package handlers

import (
	"net/http"
	"strconv"

	"local-services-api/config"
	"local-services-api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response helpers mapping business-rule violations onto the wire. Raw store
// errors never reach the caller; they are logged and replaced by a generic
// message unless gin runs in debug mode.

func validationFailed(c *gin.Context, message string, errs ...string) {
	if len(errs) == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": message, "error": errs[0]})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": errs})
}

func notFound(c *gin.Context, message, detail string) {
	c.JSON(http.StatusNotFound, gin.H{"message": message, "error": detail})
}

func forbidden(c *gin.Context, message, detail string) {
	c.JSON(http.StatusForbidden, gin.H{"message": message, "error": detail})
}

func serverError(c *gin.Context, message string, err error) {
	config.Logger.Error(message,
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("requestID", middleware.GetRequestID(c)),
	)
	detail := "Something went wrong"
	if gin.IsDebugging() {
		detail = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": detail})
}

// pageParams reads the page/limit query convention shared by all list
// endpoints.
func pageParams(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

func totalPages(total int64, limit int) int64 {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}
