package server

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/server/middleware"
)

const keyWithholdErrors = "authd.withhold_errors"

// WithholdErrors marks every request handled by the engine so that
// RespondWithError hides validation and internal messages.
func WithholdErrors(withhold bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(keyWithholdErrors, withhold)
		c.Next()
	}
}

// RespondWithError writes err as an error response. Non-AppErrors become
// Internal. Server errors are logged with the stack trace.
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.Wrap(err)
	if appErr.IsServerError() {
		fields := logger.Fields(
			logger.FieldError, err.Error(),
			"code", string(appErr.Code),
			"path", c.Request.URL.Path,
			logger.FieldRequestID, c.GetHeader(middleware.HeaderRequestID),
			"stack", string(debug.Stack()),
		)
		logger.WithComponent("server").Error("Request failed", fields)
	}

	body := appErr.ToResponse()
	if c.GetBool(keyWithholdErrors) {
		body = appErr.ToPublicResponse()
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, body)
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 response with data as the body.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondRedirect sends a 302 to location.
func RespondRedirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
