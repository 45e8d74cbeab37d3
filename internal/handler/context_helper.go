package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/college-icrs/icrs-api/internal/middleware"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
	"github.com/college-icrs/icrs-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// callerFromContext writes a 401 and returns false when no verified claims are present.
func callerFromContext(c *gin.Context) (models.Caller, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Caller{}, false
	}
	return claims.Caller(), true
}

// pathID reads a UUID path parameter, writing a 400 when it is malformed.
func pathID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return "", false
	}
	return raw, true
}
