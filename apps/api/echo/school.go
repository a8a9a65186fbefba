package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/school"
)

type schoolAPI struct {
	svc  *school.Service
	proj *projection.Store
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *jwtAuth, svc *school.Service, proj *projection.Store) {
	api := schoolAPI{svc: svc, proj: proj}
	staff := auth.staffMiddleware()

	sg := g.Group("/students", jwt)
	sg.GET("", api.queryStudents)
	sg.POST("", api.createStudent, staff)
	sg.GET("/:id", api.retrieveStudent)
	sg.PUT("/:id", api.updateStudent, staff)
	sg.DELETE("/:id", api.destroyStudent, staff)
	sg.POST("/:id/assign-class", api.assignStudentClass, staff)

	cg := g.Group("/classes", jwt)
	cg.GET("", api.queryClasses)
	cg.POST("", api.createClass, staff)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id", api.updateClass, staff)
	cg.DELETE("/:id", api.destroyClass, staff)

	rg := g.Group("/classrooms", jwt)
	rg.GET("", api.queryClassrooms)
	rg.POST("", api.createClassroom, staff)
	rg.GET("/:id", api.retrieveClassroom)
	rg.PUT("/:id", api.updateClassroom, staff)
	rg.DELETE("/:id", api.destroyClassroom, staff)

	subg := g.Group("/subjects", jwt)
	subg.GET("", api.querySubjects)
	subg.POST("", api.createSubject, staff)
	subg.GET("/:id", api.retrieveSubject)
	subg.PUT("/:id", api.updateSubject, staff)
	subg.DELETE("/:id", api.destroySubject, staff)
}

// Students

func (api *schoolAPI) queryStudents(ctx echo.Context) error {
	students, err := api.svc.QueryAllStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolAPI) createStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	api.proj.UpsertStudent(std)
	if std.ClassID != "" {
		api.proj.MoveStudentClass(std.ID, std.ClassID)
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *schoolAPI) retrieveStudent(ctx echo.Context) error {
	std, err := api.svc.GetStudentByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *schoolAPI) updateStudent(ctx echo.Context) error {
	var data school.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertStudent(std)
	api.proj.MoveStudentClass(std.ID, std.ClassID)
	return ctx.JSON(http.StatusOK, std)
}

func (api *schoolAPI) destroyStudent(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.DeleteStudent(ctx.Request().Context(), id); err != nil {
		return err
	}
	api.proj.DropStudentCascade(id)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolAPI) assignStudentClass(ctx echo.Context) error {
	var data AssignClassRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignClassRequest")
	}

	id := ctx.Param("id")
	if err := api.svc.AssignStudentToClass(ctx.Request().Context(), id, data.ClassID); err != nil {
		return err
	}
	api.proj.MoveStudentClass(id, data.ClassID)

	std, err := api.svc.GetStudentByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

// Classes

func (api *schoolAPI) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.QueryAllClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolAPI) createClass(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cl, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	api.proj.UpsertClass(cl)
	return ctx.JSON(http.StatusCreated, cl)
}

func (api *schoolAPI) retrieveClass(ctx echo.Context) error {
	cl, err := api.svc.GetClassByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cl)
}

func (api *schoolAPI) updateClass(ctx echo.Context) error {
	var data school.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cl, err := api.svc.UpdateClass(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertClass(cl)
	return ctx.JSON(http.StatusOK, cl)
}

func (api *schoolAPI) destroyClass(ctx echo.Context) error {
	id := ctx.Param("id")
	res, err := api.svc.DeleteClass(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	api.proj.DropClassCascade(id)
	return ctx.JSON(http.StatusOK, res)
}

// Classrooms

func (api *schoolAPI) queryClassrooms(ctx echo.Context) error {
	rooms, err := api.svc.QueryAllClassrooms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *schoolAPI) createClassroom(ctx echo.Context) error {
	var data school.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	room, err := api.svc.CreateClassroom(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	api.proj.UpsertClassroom(room)
	return ctx.JSON(http.StatusCreated, room)
}

func (api *schoolAPI) retrieveClassroom(ctx echo.Context) error {
	room, err := api.svc.GetClassroomByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *schoolAPI) updateClassroom(ctx echo.Context) error {
	var data school.UpdateClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	room, err := api.svc.UpdateClassroom(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertClassroom(room)
	return ctx.JSON(http.StatusOK, room)
}

func (api *schoolAPI) destroyClassroom(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.DeleteClassroom(ctx.Request().Context(), id); err != nil {
		return err
	}
	api.proj.DropClassroom(id)
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *schoolAPI) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QueryAllSubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *schoolAPI) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	api.proj.UpsertSubject(sub)
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *schoolAPI) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubjectByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *schoolAPI) updateSubject(ctx echo.Context) error {
	var data school.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	api.proj.UpsertSubject(sub)
	return ctx.JSON(http.StatusOK, sub)
}

func (api *schoolAPI) destroySubject(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.DeleteSubject(ctx.Request().Context(), id); err != nil {
		return err
	}
	api.proj.DropSubject(id)
	return ctx.NoContent(http.StatusNoContent)
}
