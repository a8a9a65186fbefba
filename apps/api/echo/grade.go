package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/school"
)

type gradeAPI struct {
	svc       *grade.Service
	schoolSvc *school.Service
	proj      *projection.Store
}

// ColumnCascadeResponse reports how many grades a column deletion removed.
type ColumnCascadeResponse struct {
	Grades int `json:"grades"`
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *jwtAuth, svc *grade.Service, schoolSvc *school.Service, proj *projection.Store) {
	api := gradeAPI{svc: svc, schoolSvc: schoolSvc, proj: proj}
	staff := auth.staffMiddleware()

	pg := g.Group("/grade-periods", jwt)
	pg.GET("", api.queryPeriods)
	pg.POST("", api.createPeriod, staff)
	pg.PUT("/:id", api.updatePeriod, staff)
	pg.DELETE("/:id", api.destroyPeriod, staff)

	cg := g.Group("/grade-columns", jwt)
	cg.GET("", api.queryColumns)
	cg.POST("", api.createColumn, staff)
	cg.PUT("/:id", api.updateColumn, staff)
	cg.DELETE("/:id", api.destroyColumn, staff)

	gg := g.Group("/grades", jwt)
	gg.GET("", api.queryGrades)
	gg.POST("", api.upsertGrade, staff)
	gg.DELETE("/:id", api.destroyGrade, staff)

	g.GET("/classes/:id/grade-summary", api.classGradeSummary, jwt)
}

// Periods

func (api *gradeAPI) queryPeriods(ctx echo.Context) error {
	periods, err := api.svc.QueryAllPeriods(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying grade periods")
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *gradeAPI) createPeriod(ctx echo.Context) error {
	var data grade.NewPeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPeriod")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.CreatePeriod(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade period")
	}
	api.proj.UpsertGradePeriod(p)
	return ctx.JSON(http.StatusCreated, p)
}

func (api *gradeAPI) updatePeriod(ctx echo.Context) error {
	var data grade.UpdatePeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePeriod")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.UpdatePeriod(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertGradePeriod(p)
	return ctx.JSON(http.StatusOK, p)
}

func (api *gradeAPI) destroyPeriod(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.DeletePeriod(ctx.Request().Context(), id); err != nil {
		return err
	}
	api.proj.DropGradePeriod(id)
	return ctx.NoContent(http.StatusNoContent)
}

// Columns

func (api *gradeAPI) queryColumns(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	if classID := ctx.QueryParam("class_id"); classID != "" {
		columns, err := api.svc.QueryColumnsByClass(rctx, classID)
		if err != nil {
			return errors.Wrap(err, "querying class grade columns")
		}
		return ctx.JSON(http.StatusOK, columns)
	}
	columns, err := api.svc.QueryAllColumns(rctx)
	if err != nil {
		return errors.Wrap(err, "querying grade columns")
	}
	return ctx.JSON(http.StatusOK, columns)
}

func (api *gradeAPI) createColumn(ctx echo.Context) error {
	var data grade.NewColumn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewColumn")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	col, err := api.svc.CreateColumn(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade column")
	}
	api.proj.UpsertGradeColumn(col)
	return ctx.JSON(http.StatusCreated, col)
}

func (api *gradeAPI) updateColumn(ctx echo.Context) error {
	var data grade.UpdateColumn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateColumn")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	col, err := api.svc.UpdateColumn(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertGradeColumn(col)
	return ctx.JSON(http.StatusOK, col)
}

func (api *gradeAPI) destroyColumn(ctx echo.Context) error {
	id := ctx.Param("id")
	nGrades, err := api.svc.DeleteColumn(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	api.proj.DropGradeColumn(id)
	return ctx.JSON(http.StatusOK, ColumnCascadeResponse{Grades: nGrades})
}

// Grades

func (api *gradeAPI) queryGrades(ctx echo.Context) error {
	grades, err := api.svc.QueryAllGrades(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeAPI) upsertGrade(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	gr, err := api.svc.UpsertGrade(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	api.proj.UpsertGrade(gr)
	return ctx.JSON(http.StatusOK, gr)
}

func (api *gradeAPI) destroyGrade(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.DeleteGrade(ctx.Request().Context(), id); err != nil {
		return err
	}
	api.proj.DropGrade(id)
	return ctx.NoContent(http.StatusNoContent)
}

// classGradeSummary returns per-student weighted averages for a class roster.
func (api *gradeAPI) classGradeSummary(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	cl, err := api.schoolSvc.GetClassByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	averages, err := api.svc.ClassAverages(rctx, cl.ID, cl.StudentIDs)
	if err != nil {
		return errors.Wrap(err, "computing class averages")
	}
	return ctx.JSON(http.StatusOK, averages)
}
