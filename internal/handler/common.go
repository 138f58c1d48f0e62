package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// errNoSession is returned by getSessionID when the middleware did not
// store a session identifier in the context.
var errNoSession = errors.New("no session in context")

// getSessionID extracts the shopping session ID stored by the SessionAuth
// middleware.  Handlers respond 401 when it is missing.
func getSessionID(c echo.Context) (string, error) {
	v := c.Get("session_id")
	sid, ok := v.(string)
	if !ok || sid == "" {
		return "", errNoSession
	}
	return sid, nil
}

// tripIDParam parses the :id path parameter as a trip identifier.
func tripIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid trip id")
	}
	return id, nil
}
