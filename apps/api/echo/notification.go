package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/htpham/tutorhub/core/notification"
)

type notificationAPI struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationAPI{svc: svc}

	ng := g.Group("/notifications", jwt)
	ng.POST("/day-notice", api.dayNotice)
}

// dayNotice builds a shareable announcement of one day's schedule. Teachers
// only see their own sessions; staff may announce the whole day or any
// teacher's.
func (api *notificationAPI) dayNotice(ctx echo.Context) error {
	var data notification.GenerateNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateNotice")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getRequestClaims(ctx)
	if err != nil {
		return err
	}
	if !claims.IsAdmin && !claims.IsManager {
		data.TeacherID = claims.Subject
	}

	notice, err := api.svc.DayNotice(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating day notice")
	}
	return ctx.JSON(http.StatusOK, notice)
}
