// Package fixtures loads the site's static data: Aula Virtual accounts and
// courses, blog posts and library books.
package fixtures

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/blog"
	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/library"
	"github.com/ifcet/aula/core/student"
)

//go:embed data
var embedded embed.FS

// File base names, looked up with each of extensions in turn.
const (
	AulaFile    = "aula"
	BlogFile    = "blog"
	LibraryFile = "libros"
)

var (
	ErrFileNotFound = errors.New("fixture file not found")

	extensions = []string{".json", ".yaml", ".yml"}
)

type (
	// Account is a portal login as written in the fixtures, with a plain password.
	Account struct {
		ID        int    `json:"id"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		FullName  string `json:"fullName"`
		Email     string `json:"email"`
		CourseIDs []int  `json:"courseIds"`
		Docente   bool   `json:"docente"`
	}

	Aula struct {
		Users   []Account       `json:"users"`
		Courses []course.Course `json:"courses"`
	}

	Blog struct {
		Posts      []blog.Post     `json:"posts"`
		Categories []blog.Category `json:"categories"`
	}

	Set struct {
		Aula  Aula
		Blog  Blog
		Books []library.Book
	}
)

// Load reads the fixtures from `dir`, or from the embedded defaults when `dir` is empty.
// Files missing from `dir` fall back to the embedded ones.
func Load(dir string) (*Set, error) {
	defaults, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, errors.Wrap(err, "opening embedded fixtures")
	}
	sources := []fs.FS{defaults}
	if dir != "" {
		sources = append([]fs.FS{os.DirFS(dir)}, sources...)
	}

	set := new(Set)
	if err = decodeFirst(sources, AulaFile, &set.Aula); err != nil {
		return nil, err
	}
	if err = decodeFirst(sources, BlogFile, &set.Blog); err != nil {
		return nil, err
	}
	if err = decodeFirst(sources, LibraryFile, &set.Books); err != nil {
		return nil, err
	}
	return set, nil
}

func decodeFirst(sources []fs.FS, name string, v interface{}) error {
	for _, fsys := range sources {
		err := Decode(fsys, name, v)
		if errors.Cause(err) == ErrFileNotFound {
			continue
		}
		return err
	}
	return errors.Wrap(ErrFileNotFound, name)
}

// Decode reads `name` with the first extension found in `fsys` into v.
// YAML documents go through their JSON form so both formats share the json tags.
func Decode(fsys fs.FS, name string, v interface{}) error {
	for _, ext := range extensions {
		data, err := fs.ReadFile(fsys, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "reading %s", name+ext)
		}

		if ext != ".json" {
			if data, err = yamlToJSON(data); err != nil {
				return errors.Wrapf(err, "parsing %s", name+ext)
			}
		}
		if err = json.Unmarshal(data, v); err != nil {
			return errors.Wrapf(err, "decoding %s", path.Base(name+ext))
		}
		return nil
	}
	return errors.Wrap(ErrFileNotFound, name)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Student converts the account, hashing its password.
func (a Account) Student() (student.Student, error) {
	st := student.Student{
		ID:        a.ID,
		Username:  core.CleanString(a.Username, true /* lower */),
		FullName:  a.FullName,
		Email:     a.Email,
		CourseIDs: a.CourseIDs,
		Docente:   a.Docente,
	}
	if err := st.SetPassword(a.Password); err != nil {
		return student.Student{}, errors.Wrapf(err, "hashing password of %s", a.Username)
	}
	return st, nil
}

// Students converts every account.
func (a Aula) Students() ([]student.Student, error) {
	students := make([]student.Student, 0, len(a.Users))
	for _, acc := range a.Users {
		st, err := acc.Student()
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, nil
}

// Seed saves the fixture courses and creates the accounts missing from `students`.
// It returns the number of accounts created.
func Seed(ctx context.Context, aula Aula, students student.Repository, courses course.Repository) (int, error) {
	for _, c := range aula.Courses {
		if _, err := courses.SaveCourse(ctx, c); err != nil {
			return 0, errors.Wrapf(err, "saving course %d", c.ID)
		}
	}

	sts, err := aula.Students()
	if err != nil {
		return 0, err
	}
	var created int
	for _, st := range sts {
		_, err = students.GetStudentByUsername(ctx, st.Username)
		if err == nil {
			continue
		}
		if errors.Cause(err) != student.ErrNotFound {
			return created, errors.Wrapf(err, "looking up %s", st.Username)
		}
		if _, err = students.CreateStudent(ctx, st); err != nil {
			return created, errors.Wrapf(err, "creating %s", st.Username)
		}
		created++
	}
	return created, nil
}
