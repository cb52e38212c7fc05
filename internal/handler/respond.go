package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/BheemChand1/attendance-backend/internal/apperr"
)

// respondError renders the error taxonomy as the API envelope. The stable
// message and the status flag are the contract; internal error text stays in
// the logs.
func respondError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), echo.Map{
		"message": apperr.MessageOf(err),
		"status":  false,
	})
}
