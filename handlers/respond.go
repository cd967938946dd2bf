package handlers

import (
	"errors"
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError translates the service-layer error taxonomy into HTTP
// responses. Validation failures carry the full field->rules map so the
// admin UI can annotate every offending input at once.
func respondError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
		return
	}

	var nferr *apperrors.NotFoundError
	if errors.As(err, &nferr) {
		c.JSON(http.StatusNotFound, gin.H{"error": nferr.Error()})
		return
	}

	var cerr *apperrors.ConflictError
	if errors.As(err, &cerr) {
		c.JSON(http.StatusConflict, gin.H{"error": cerr.Error()})
		return
	}

	var aerr *apperrors.AuthorizationError
	if errors.As(err, &aerr) {
		c.JSON(http.StatusForbidden, gin.H{"error": aerr.Error()})
		return
	}

	var ierr *apperrors.IntegrityError
	if errors.As(err, &ierr) {
		logger.Get().Error("data integrity violation",
			zap.String("path", c.FullPath()),
			zap.Error(ierr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal data inconsistency detected"})
		return
	}

	logger.Get().Error("unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// tenantID reads the tenant set by the auth middleware.
func tenantID(c *gin.Context) uuid.UUID {
	return c.MustGet("tenant_id").(uuid.UUID)
}

// parseID parses a path parameter as a uuid, answering 404 on garbage so
// malformed ids are indistinguishable from missing entities.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return uuid.Nil, false
	}
	return id, true
}
