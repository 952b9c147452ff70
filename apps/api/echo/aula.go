package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/session"
	"github.com/ifcet/aula/core/student"
)

type aulaApi struct {
	portal     *session.Portal
	sessions   session.Backend
	studentSvc *student.Service
	courseSvc  *course.Service
	logger     core.Logger
}

func registerAulaAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := aulaApi{
		portal:     deps.Portal,
		sessions:   deps.Sessions,
		studentSvc: deps.StudentSvc,
		courseSvc:  deps.CourseSvc,
		logger:     deps.Logger,
	}

	ag := g.Group("/aula")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	sg := ag.Group("", jwt, storeMiddleware(api.sessions))
	sg.GET("", api.home)
	sg.PUT("/course", api.selectCourse)
	sg.POST("/logout", api.logout)
	sg.POST("/token-refresh", api.refreshToken)

	// course endpoints
	cg := sg.Group("/courses/:id")
	cg.GET("", api.retrieveCourse)
	cg.GET("/sessions", api.courseRecordings)
	cg.GET("/materials", api.courseMaterials)
	cg.GET("/tasks", api.courseTasks)
	cg.GET("/exams", api.courseExams)
}

// Handlers

func (api *aulaApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	namespace := NewNamespace()
	store := api.sessions.Scope(namespace)
	st, err := api.portal.Login(ctx.Request().Context(), store, data.Username, data.Password, ctx.QueryParams())
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetSessionClaims(st.Session, namespace))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, State: st})
}

func (api *aulaApi) home(ctx echo.Context) error {
	store, err := getContextStore(ctx)
	if err != nil {
		return err
	}
	st, err := api.portal.Restore(ctx.Request().Context(), store, ctx.QueryParams())
	if err != nil {
		return err
	}
	return api.aulaResponse(ctx, st)
}

func (api *aulaApi) selectCourse(ctx echo.Context) error {
	var data SelectCourseRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectCourseRequest")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	store, err := getContextStore(ctx)
	if err != nil {
		return err
	}
	st, err := api.portal.Select(ctx.Request().Context(), store, data.CourseID, ctx.QueryParams())
	if err != nil {
		return err
	}
	return api.aulaResponse(ctx, st)
}

func (api *aulaApi) logout(ctx echo.Context) error {
	store, err := getContextStore(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.portal.Logout(ctx.Request().Context(), store, ctx.QueryParams()))
}

func (api *aulaApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.studentSvc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *aulaApi) retrieveCourse(ctx echo.Context) error {
	c, err := api.contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newCourseDetail(c))
}

func (api *aulaApi) courseRecordings(ctx echo.Context) error {
	c, err := api.contextCourse(ctx)
	if err != nil {
		return err
	}
	recordings := c.Recordings
	if recordings == nil {
		recordings = []course.Recording{}
	}
	return ctx.JSON(http.StatusOK, recordings)
}

func (api *aulaApi) courseMaterials(ctx echo.Context) error {
	c, err := api.contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course.MaterialViews(c))
}

func (api *aulaApi) courseTasks(ctx echo.Context) error {
	c, err := api.contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course.TaskViews(c, course.NowFunc()))
}

func (api *aulaApi) courseExams(ctx echo.Context) error {
	c, err := api.contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course.ExamViews(c, course.NowFunc()))
}

// helpers

func (api *aulaApi) aulaResponse(ctx echo.Context, st session.State) error {
	courses, err := api.courseSvc.ListForStudent(ctx.Request().Context(), st.Session)
	if err != nil {
		return errors.Wrap(err, "listing student courses")
	}

	resp := AulaResponse{State: st, Courses: courses}
	if st.ActiveCourseID.Valid {
		for _, c := range courses {
			if c.ID == st.ActiveCourseID.Int {
				resp.ActiveCourse = newCourseDetail(c)
				break
			}
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

// contextCourse returns the course named by the `:id` path param, when the
// persisted session may access it.
func (api *aulaApi) contextCourse(ctx echo.Context) (course.Course, error) {
	store, err := getContextStore(ctx)
	if err != nil {
		return course.Course{}, err
	}
	s := session.NewResolver(store, api.logger).RestoreSession(ctx.Request().Context())
	if s == nil {
		return course.Course{}, session.ErrLoggedOut
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return course.Course{}, errHttpNotFound
	}
	c, err := api.courseSvc.GetForStudent(ctx.Request().Context(), s, id)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "getting student course")
	}
	return c, nil
}
