package webserver

import (
	"github.com/labstack/echo/v4"
)

// ApiResponse is the tagged envelope every endpoint returns. Success always
// carries ok=true; failures carry ok=false, data=null and a human-readable
// message.
type ApiResponse struct {
	Ok      bool        `json:"ok"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Ok writes a 200 success envelope.
func Ok(c echo.Context, data interface{}, message string) error {
	return c.JSON(200, ApiResponse{Ok: true, Message: message, Data: data})
}

// Fail writes a failure envelope with the given HTTP status.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, ApiResponse{Ok: false, Message: message, Data: nil})
}
