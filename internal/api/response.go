package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorDetail describes one rejected field or request problem.
type ErrorDetail struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func dataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func badRequest(c echo.Context, details []ErrorDetail) error {
	return dataResponse(c, http.StatusBadRequest, details)
}
