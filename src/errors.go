package main

import (
	"errors"
	"net/http"
	"parkres/src/types"

	"github.com/gin-gonic/gin"
)

// respondError translates expected domain outcomes to status codes.
// Anything unrecognized is reported as a plain bad request so internal
// details stay out of responses.
func respondError(ctx *gin.Context, err error) {
	var ve *types.ValidationError
	var inuse *types.CarInUseError
	switch {
	case errors.As(err, &ve):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": ve.Fields})
	case errors.As(err, &inuse):
		ctx.JSON(http.StatusConflict, gin.H{"error": inuse.Error(), "active_bookings": inuse.Count})
	case errors.Is(err, types.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrDuplicateLicense),
		errors.Is(err, types.ErrInvalidTransition),
		errors.Is(err, types.ErrNoCapacity):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrDuplicateIdentifier):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
