package echoapi

import (
	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/content"
	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/library"
	"github.com/ifcet/aula/core/session"
)

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		session.State
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	SelectCourseRequest struct {
		CourseID int `json:"courseId" validate:"required,gt=0"`
	}

	// AulaResponse is everything the portal home renders: the state, the
	// sidebar courses and the active course.
	AulaResponse struct {
		session.State
		Courses      []course.Course `json:"courses"`
		ActiveCourse *CourseDetail   `json:"activeCourse"`
	}

	CourseDetail struct {
		course.Course
		Summary course.Summary `json:"summary"`
	}

	RenderRequest struct {
		Content string `json:"content" validate:"required"`
	}

	RenderResponse struct {
		Fragments []content.Fragment `json:"fragments"`
		HTML      string             `json:"html"`
	}

	LibraryResponse struct {
		Books      []library.Book `json:"books"`
		Categories []string       `json:"categories"`
		Total      int            `json:"total"`
	}

	ContactResponse struct {
		Message string `json:"message"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func newCourseDetail(c course.Course) *CourseDetail {
	return &CourseDetail{Course: c, Summary: course.Summarize(c)}
}
