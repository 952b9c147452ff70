package student

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/session"
)

type Student struct {
	ID             int       `json:"id" yaml:"id"`
	Username       string    `json:"username" yaml:"username"`
	FullName       string    `json:"name" yaml:"name"`
	Email          string    `json:"email,omitempty" yaml:"email"`
	CourseIDs      []int     `json:"courseIds" yaml:"courseIds"`
	Docente        bool      `json:"docente,omitempty" yaml:"docente"`
	EnrollmentDate null.Time `json:"enrollmentDate" yaml:"-"`
	PasswordHash   []byte    `json:"-" yaml:"-"`
	CreatedAt      time.Time `json:"-" yaml:"-"` // UTC
	UpdatedAt      time.Time `json:"-" yaml:"-"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// Session returns the persisted view of the student.
func (s Student) Session() *session.Session {
	ids := make([]int, len(s.CourseIDs))
	copy(ids, s.CourseIDs)
	return &session.Session{
		ID:        s.ID,
		Username:  s.Username,
		Name:      s.FullName,
		Email:     s.Email,
		CourseIDs: ids,
		Docente:   s.Docente,
	}
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	FullName        string `json:"name" validate:"required,notblank"`
	Username        string `json:"username" validate:"required,min=3,username"`
	Email           string `json:"email" validate:"omitempty,email"`
	CourseIDs       []int  `json:"courseIds" validate:"required,min=1,dive,gt=0"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewStudent) Validate() error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return core.Validate.Struct(ns)
}

type ResetPassword struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetPassword) Validate() error {
	rp.Username = core.CleanString(rp.Username, true /* lower */)
	return core.Validate.Struct(rp)
}
