package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
)

type projectionAPI struct {
	proj *projection.Store
}

// ProjectionResponse is the one-shot data bundle clients load on startup.
// Stale is set when the last refresh failed and the data predates it.
type ProjectionResponse struct {
	Students     []school.Student      `json:"students"`
	Classes      []school.Class        `json:"classes"`
	Classrooms   []school.Classroom    `json:"classrooms"`
	Subjects     []school.Subject      `json:"subjects"`
	Schedules    []schedule.Schedule   `json:"schedules"`
	Attendance   []schedule.Attendance `json:"attendance"`
	GradePeriods []grade.Period        `json:"grade_periods"`
	GradeColumns []grade.Column        `json:"grade_columns"`
	Grades       []grade.Grade         `json:"grades"`
	FetchedAt    time.Time             `json:"fetched_at"`
	Stale        bool                  `json:"stale"`
}

func registerProjectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, proj *projection.Store) {
	api := projectionAPI{proj: proj}

	pg := g.Group("/projection", jwt)
	pg.GET("", api.retrieve)
	pg.POST("/refresh", api.refresh)
}

func (api *projectionAPI) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, snapshotResponse(api.proj))
}

func (api *projectionAPI) refresh(ctx echo.Context) error {
	if err := api.proj.Refresh(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "refreshing projection")
	}
	return ctx.JSON(http.StatusOK, snapshotResponse(api.proj))
}

func snapshotResponse(proj *projection.Store) ProjectionResponse {
	snap := proj.Current()

	resp := ProjectionResponse{
		Students:     make([]school.Student, 0, len(snap.Students)),
		Classes:      make([]school.Class, 0, len(snap.Classes)),
		Classrooms:   make([]school.Classroom, 0, len(snap.Classrooms)),
		Subjects:     make([]school.Subject, 0, len(snap.Subjects)),
		Schedules:    make([]schedule.Schedule, 0, len(snap.Schedules)),
		Attendance:   make([]schedule.Attendance, 0, len(snap.Attendance)),
		GradePeriods: make([]grade.Period, 0, len(snap.GradePeriods)),
		GradeColumns: make([]grade.Column, 0, len(snap.GradeColumns)),
		Grades:       make([]grade.Grade, 0, len(snap.Grades)),
		FetchedAt:    snap.FetchedAt,
		Stale:        proj.Err() != nil,
	}
	for _, v := range snap.Students {
		resp.Students = append(resp.Students, v)
	}
	for _, v := range snap.Classes {
		resp.Classes = append(resp.Classes, v)
	}
	for _, v := range snap.Classrooms {
		resp.Classrooms = append(resp.Classrooms, v)
	}
	for _, v := range snap.Subjects {
		resp.Subjects = append(resp.Subjects, v)
	}
	for _, v := range snap.Schedules {
		resp.Schedules = append(resp.Schedules, v)
	}
	for _, v := range snap.Attendance {
		resp.Attendance = append(resp.Attendance, v)
	}
	for _, v := range snap.GradePeriods {
		resp.GradePeriods = append(resp.GradePeriods, v)
	}
	for _, v := range snap.GradeColumns {
		resp.GradeColumns = append(resp.GradeColumns, v)
	}
	for _, v := range snap.Grades {
		resp.Grades = append(resp.Grades, v)
	}
	return resp
}
