package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

// APIError is the error envelope for every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func newAPIError(msg string) *APIError {
	return &APIError{Detail: msg}
}

type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func newValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

type MissingChemicalsError struct {
	Detail  string   `json:"detail"`
	Missing []string `json:"missing"`
}

// writeError maps engine errors onto status codes. Persistence failures do
// not leak the underlying cause.
func writeError(c *gin.Context, err error) {
	var (
		ve  *inventory.ValidationError
		mc  *inventory.MissingChemicalError
		dup *inventory.DuplicateNameError
		nf  *inventory.NotFoundError
		pe  *inventory.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, newValidation(ve.Fields))
	case errors.As(err, &mc):
		c.JSON(http.StatusUnprocessableEntity, &MissingChemicalsError{Detail: mc.Error(), Missing: mc.Names})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, newAPIError(dup.Error()))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, newAPIError(nf.Error()))
	case errors.As(err, &pe):
		c.JSON(http.StatusInternalServerError, newAPIError("could not save changes"))
	default:
		c.JSON(http.StatusInternalServerError, newAPIError("internal error"))
	}
}
