package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shorty/internal/shortener"
	"go.uber.org/zap"
)

// toHTTPError maps domain errors to HTTP errors. Anything unrecognised is
// a store failure: it is logged and answered with a fixed message.
func (h *LinkHandler) toHTTPError(err error, op string, id shortener.ShortID) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrUnauthorized):
		return huma.Error401Unauthorized("Unauthorized")
	case errors.Is(err, shortener.ErrIDCollision):
		return huma.Error409Conflict("generated id collided, retry the request")
	case errors.Is(err, shortener.ErrConflict):
		return huma.Error409Conflict("id already taken")
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("not found")
	}

	h.logger.Error("store failure",
		zap.String("op", op),
		zap.String("short_id", string(id)),
		zap.Error(err),
	)

	return huma.Error500InternalServerError("internal error")
}
