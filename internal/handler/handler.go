package handler

import (
	"net/http"

	"taskflow/internal/apperr"
	"taskflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a service error to its HTTP status through the taxonomy.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if field := apperr.Field(err); field != "" {
		c.JSON(status, response.FieldError(status, field, err.Error()))
		return
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

// pathID parses the :id route parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.FieldError(http.StatusBadRequest, name, "invalid uuid"))
		return uuid.Nil, false
	}
	return id, true
}
