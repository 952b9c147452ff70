package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/blog"
	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/session"
	"github.com/ifcet/aula/core/student"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "usuario no autenticado")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "la sesión ha expirado")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "no encontrado")
)

// sentinelHTTPError maps the domain sentinel errors to their HTTP response.
func sentinelHTTPError(err error) *echo.HTTPError {
	switch err {
	case session.ErrBadCredentials:
		return echo.NewHTTPError(http.StatusUnauthorized, core.T(core.MsgBadCredentials))
	case session.ErrAccessDenied:
		return echo.NewHTTPError(http.StatusForbidden, core.T(core.MsgCourseAccessDenied))
	case session.ErrLoggedOut:
		return errUnauthorized
	case student.ErrNotFound, course.ErrNotFound, blog.ErrNotFound:
		return errHttpNotFound
	case blog.ErrSourceUnavailable:
		return echo.NewHTTPError(http.StatusBadGateway, blog.ErrSourceUnavailable.Error())
	}
	return nil
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if herr := sentinelHTTPError(cause); herr != nil {
			cause = herr
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateErrors(origErr)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			s := new(session.Session)
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				s.Username = claims.Username
				s.Name = claims.Name
			}
			logger.Error(msg, errors.Wrap(err, msg), s)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
