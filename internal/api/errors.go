package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"kodbank/internal/domain" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError translates a service error into its HTTP status. Unexpected
// errors are logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var uerr *domain.UpstreamError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, domain.ErrConflict):
		// Reported as a client error like the other input problems
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.As(err, &uerr):
		c.Data(uerr.Status, "application/json; charset=utf-8", uerr.Body)
	default:
		_ = c.Error(err) // Surface to the request logger
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// invalidRequest answers a body that could not be decoded at all
func invalidRequest(c *gin.Context) {
	respondError(c, domain.NewValidationError("Invalid request body"))
}
