package course

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/ifcet/aula/core/session"
)

var ErrNotFound = errors.New("course not found")

// NowFunc returns the current time.
var NowFunc = time.Now // mockable

type (
	Repository interface {
		// QueryCourses returns the courses with the given ids ordered by id; all of them when ids is empty.
		QueryCourses(ctx context.Context, ids ...int) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		SaveCourse(ctx context.Context, c Course) (Course, error)
	}

	Service struct {
		repo Repository
	}

	Summary struct {
		CourseID      int    `json:"courseId"`
		Status        string `json:"status"`
		StatusLabel   string `json:"statusLabel"`
		Recordings    int    `json:"recordings"`
		Materials     int    `json:"materials"`
		PendingTasks  int    `json:"pendingTasks"`
		UpcomingExams int    `json:"upcomingExams"`
	}

	TaskView struct {
		Task
		StatusLabel string `json:"statusLabel"`
		DueLabel    string `json:"dueLabel,omitempty"`
	}

	ExamView struct {
		Exam
		StatusLabel    string `json:"statusLabel"`
		CountdownLabel string `json:"countdownLabel,omitempty"`
	}

	MaterialView struct {
		Material
		Kind string `json:"kind"`
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListForStudent returns the courses the session may access, in catalog order.
func (svc *Service) ListForStudent(ctx context.Context, s *session.Session) ([]Course, error) {
	if s == nil || len(s.CourseIDs) == 0 {
		return []Course{}, nil
	}
	courses, err := svc.repo.QueryCourses(ctx, s.CourseIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *Service) Get(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// GetForStudent returns the course when the session may access it.
func (svc *Service) GetForStudent(ctx context.Context, s *session.Session, id int) (Course, error) {
	if !s.HasCourse(id) {
		return Course{}, session.ErrAccessDenied
	}
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Save(ctx context.Context, c Course) (Course, error) {
	return svc.repo.SaveCourse(ctx, c)
}

// Summarize counts what the course home page highlights.
func Summarize(c Course) Summary {
	sum := Summary{
		CourseID:    c.ID,
		Status:      c.Status,
		StatusLabel: c.StatusLabel(),
		Recordings:  len(c.Recordings),
		Materials:   len(c.Materials),
	}
	for _, t := range c.Tasks {
		if t.Pending() {
			sum.PendingTasks++
		}
	}
	for _, e := range c.Exams {
		if e.Upcoming() {
			sum.UpcomingExams++
		}
	}
	return sum
}

func TaskViews(c Course, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		views = append(views, TaskView{Task: t, StatusLabel: t.StatusLabel(), DueLabel: t.DueLabel(now)})
	}
	return views
}

func ExamViews(c Course, now time.Time) []ExamView {
	views := make([]ExamView, 0, len(c.Exams))
	for _, e := range c.Exams {
		views = append(views, ExamView{Exam: e, StatusLabel: e.StatusLabel(), CountdownLabel: e.CountdownLabel(now)})
	}
	return views
}

func MaterialViews(c Course) []MaterialView {
	views := make([]MaterialView, 0, len(c.Materials))
	for _, m := range c.Materials {
		views = append(views, MaterialView{Material: m, Kind: m.Kind()})
	}
	return views
}
