package controllers

import (
	"errors"

	"littlelemon/pkg/logging"
	"littlelemon/pkg/resp"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var (
		nf *services.NotFoundError
		ve *services.ValidationError
	)
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		resp.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		resp.Forbidden(c, err.Error())
	case errors.As(err, &nf):
		resp.NotFound(c, nf.Error())
	case errors.As(err, &ve):
		resp.Invalid(c, "validation failed", ve.Fields)
	case errors.Is(err, services.ErrConflict):
		resp.Conflict(c, err.Error())
	default:
		_ = c.Error(err)
		logging.From(c).Error("request failed", "error", err)
		resp.ServerError(c, errors.New("internal error"))
	}
}
