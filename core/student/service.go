package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/session"
)

var (
	// errors
	ErrNotFound       = errors.New("student not found")
	ErrUsernameExists = errors.New("ya existe un estudiante con este usuario")
)

// NowFunc returns the current time.
var NowFunc = time.Now // mockable

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByUsername(ctx context.Context, username string) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

var _ session.Authenticator = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if _, err := svc.repo.GetStudentByUsername(ctx, ns.Username); err == nil {
		return Student{}, core.NewValidationError(
			ErrUsernameExists,
			core.FieldError{Field: "username", Error: ErrUsernameExists.Error()},
		)
	} else if errors.Cause(err) != ErrNotFound {
		return Student{}, errors.Wrap(err, "checking username")
	}

	now := NowFunc().UTC()
	st := Student{
		Username:  ns.Username,
		FullName:  ns.FullName,
		Email:     ns.Email,
		CourseIDs: ns.CourseIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.EnrollmentDate.SetValid(now.Truncate(24 * time.Hour))
	if err := st.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateStudent(ctx, st)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Student, error) {
	return svc.repo.GetStudentByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) (Student, error) {
	st, err := svc.GetByUsername(ctx, rp.Username)
	if err != nil {
		return Student{}, err
	}
	if err = st.SetPassword(rp.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	st.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}

// Authenticate checks the credentials and returns the student's session record.
func (svc *Service) Authenticate(ctx context.Context, username, password string) (*session.Session, error) {
	st, err := svc.GetByUsername(ctx, username)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, session.ErrBadCredentials
		}
		return nil, errors.Wrap(err, "finding student by username")
	}
	if err = st.CheckPassword(password); err != nil {
		return nil, session.ErrBadCredentials
	}
	return st.Session(), nil
}
