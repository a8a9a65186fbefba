package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/schedule"
)

type scheduleAPI struct {
	svc  *schedule.Service
	proj *projection.Store
}

// CopyWeekResponse reports how a week copy went. Deleted is non-zero only
// when the destination week was overwritten.
type CopyWeekResponse struct {
	Copied  []schedule.Schedule `json:"copied"`
	Deleted int                 `json:"deleted"`
}

// ScheduleCascadeResponse reports how many attendance rows a schedule
// deletion removed along the way.
type ScheduleCascadeResponse struct {
	Attendance int `json:"attendance"`
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *jwtAuth, svc *schedule.Service, proj *projection.Store) {
	api := scheduleAPI{svc: svc, proj: proj}
	staff := auth.staffMiddleware()

	sg := g.Group("/schedules", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, staff)
	sg.GET("/week", api.queryWeek)
	sg.POST("/copy-week", api.copyWeek, staff)
	sg.DELETE("/week", api.destroyWeek, staff)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, staff)
	sg.DELETE("/:id", api.destroy, staff)
	sg.GET("/:id/attendance", api.queryAttendance)
	sg.POST("/:id/attendance", api.markAttendance, staff)
	sg.DELETE("/:id/attendance", api.resetAttendance, staff)
}

func (api *scheduleAPI) query(ctx echo.Context) error {
	schedules, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleAPI) create(ctx echo.Context) error {
	var data schedule.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sch, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}
	api.proj.UpsertSchedule(sch)
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *scheduleAPI) retrieve(ctx echo.Context) error {
	sch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleAPI) update(ctx echo.Context) error {
	var data schedule.UpdateSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchedule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sch, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertSchedule(sch)
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleAPI) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	nAtts, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	api.proj.DropSchedule(id)
	return ctx.JSON(http.StatusOK, ScheduleCascadeResponse{Attendance: nAtts})
}

func (api *scheduleAPI) queryWeek(ctx echo.Context) error {
	weekStart, err := weekStartParam(ctx)
	if err != nil {
		return err
	}
	week, err := api.svc.WeekSchedules(ctx.Request().Context(), weekStart)
	if err != nil {
		return errors.Wrap(err, "querying week schedules")
	}
	return ctx.JSON(http.StatusOK, week)
}

func (api *scheduleAPI) copyWeek(ctx echo.Context) error {
	var data schedule.CopyWeekRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CopyWeekRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	fromWeek := data.FromWeekStart.WeekStart()
	toWeek := data.ToWeekStart.WeekStart()

	existing, err := api.svc.WeekSchedules(rctx, toWeek)
	if err != nil {
		return errors.Wrap(err, "probing destination week")
	}

	var deleted int
	if len(existing) > 0 {
		if !data.Overwrite {
			return echo.NewHTTPError(http.StatusConflict,
				"destination week already has schedules; set overwrite to replace them")
		}
		deleted, err = api.svc.DeleteWeek(rctx, toWeek)
		if err != nil {
			return errors.Wrap(err, "clearing destination week")
		}
		for _, sch := range existing {
			api.proj.DropSchedule(sch.ID)
		}
	}

	copied, err := api.svc.CopyWeek(rctx, fromWeek, toWeek)
	if err != nil {
		return errors.Wrap(err, "copying week")
	}
	for _, sch := range copied {
		api.proj.UpsertSchedule(sch)
	}
	return ctx.JSON(http.StatusOK, CopyWeekResponse{Copied: copied, Deleted: deleted})
}

func (api *scheduleAPI) destroyWeek(ctx echo.Context) error {
	weekStart, err := weekStartParam(ctx)
	if err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	week, err := api.svc.WeekSchedules(rctx, weekStart)
	if err != nil {
		return errors.Wrap(err, "querying week schedules")
	}
	deleted, err := api.svc.DeleteWeek(rctx, weekStart)
	if err != nil {
		return errors.Wrap(err, "deleting week")
	}
	for _, sch := range week {
		api.proj.DropSchedule(sch.ID)
	}
	return ctx.JSON(http.StatusOK, map[string]int{"deleted": deleted})
}

// Attendance sheet

func (api *scheduleAPI) queryAttendance(ctx echo.Context) error {
	atts, err := api.svc.ScheduleAttendance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *scheduleAPI) markAttendance(ctx echo.Context) error {
	var data schedule.SetAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetAttendance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	att, err := api.svc.MarkAttendance(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertAttendance(att)
	return ctx.JSON(http.StatusOK, att)
}

func (api *scheduleAPI) resetAttendance(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	id := ctx.Param("id")
	atts, err := api.svc.ScheduleAttendance(rctx, id)
	if err != nil {
		return err
	}
	deleted, err := api.svc.ResetAttendance(rctx, id)
	if err != nil {
		return err
	}
	for _, att := range atts {
		api.proj.DropAttendance(att.ID)
	}
	return ctx.JSON(http.StatusOK, map[string]int{"deleted": deleted})
}

// weekStartParam reads the `start` query param as a date and snaps it back
// to the Sunday anchoring its week.
func weekStartParam(ctx echo.Context) (core.Date, error) {
	raw := ctx.QueryParam("start")
	if raw == "" {
		return core.Today().WeekStart(), nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, core.NewValidationError(nil, core.FieldError{Field: "start", Error: "invalid date, expected YYYY-MM-DD"})
	}
	return d.WeekStart(), nil
}
