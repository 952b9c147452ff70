package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ifcet/aula/core/course"
)

const courseColumns = `id, name, codename, description, instructor, status, start_date, end_date, schedule, total_sessions, zoom, recordings, materials, tasks, exams`

type (
	// courseRow stores the course modules as JSON documents.
	courseRow struct {
		ID            int            `db:"id"`
		Name          string         `db:"name"`
		Codename      string         `db:"codename"`
		Description   string         `db:"description"`
		Instructor    string         `db:"instructor"`
		Status        string         `db:"status"`
		StartDate     string         `db:"start_date"`
		EndDate       string         `db:"end_date"`
		Schedule      string         `db:"schedule"`
		TotalSessions null.Int       `db:"total_sessions"`
		Zoom          string         `db:"zoom"`
		Recordings    types.JSONText `db:"recordings"`
		Materials     types.JSONText `db:"materials"`
		Tasks         types.JSONText `db:"tasks"`
		Exams         types.JSONText `db:"exams"`
	}

	courseRepository struct {
		db sqlx.ExtContext
	}
)

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db sqlx.ExtContext) *courseRepository {
	return &courseRepository{db: db}
}

func marshalList(v interface{}) (types.JSONText, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return types.JSONText("[]"), nil
	}
	return types.JSONText(data), nil
}

func toCourseRow(c course.Course) (row courseRow, err error) {
	row = courseRow{
		ID:            c.ID,
		Name:          c.Name,
		Codename:      c.Codename,
		Description:   c.Description,
		Instructor:    c.Instructor,
		Status:        c.Status,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		Schedule:      c.Schedule,
		TotalSessions: c.TotalSessions,
		Zoom:          c.Zoom,
	}
	if row.Recordings, err = marshalList(c.Recordings); err != nil {
		return row, errors.Wrap(err, "encoding recordings")
	}
	if row.Materials, err = marshalList(c.Materials); err != nil {
		return row, errors.Wrap(err, "encoding materials")
	}
	if row.Tasks, err = marshalList(c.Tasks); err != nil {
		return row, errors.Wrap(err, "encoding tasks")
	}
	if row.Exams, err = marshalList(c.Exams); err != nil {
		return row, errors.Wrap(err, "encoding exams")
	}
	return row, nil
}

func (row courseRow) course() (course.Course, error) {
	c := course.Course{
		ID:            row.ID,
		Name:          row.Name,
		Codename:      row.Codename,
		Description:   row.Description,
		Instructor:    row.Instructor,
		Status:        row.Status,
		StartDate:     row.StartDate,
		EndDate:       row.EndDate,
		Schedule:      row.Schedule,
		TotalSessions: row.TotalSessions,
		Zoom:          row.Zoom,
	}
	for _, doc := range []struct {
		text types.JSONText
		dest interface{}
	}{
		{row.Recordings, &c.Recordings},
		{row.Materials, &c.Materials},
		{row.Tasks, &c.Tasks},
		{row.Exams, &c.Exams},
	} {
		if len(doc.text) == 0 {
			continue
		}
		if err := doc.text.Unmarshal(doc.dest); err != nil {
			return course.Course{}, errors.Wrapf(err, "decoding course %d", row.ID)
		}
	}
	return c, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, ids ...int) ([]course.Course, error) {
	var (
		rows []courseRow
		err  error
	)
	if len(ids) == 0 {
		err = sqlx.SelectContext(ctx, repo.db, &rows, `SELECT `+courseColumns+` FROM courses ORDER BY id`)
	} else {
		arr := make(pq.Int64Array, 0, len(ids))
		for _, id := range ids {
			arr = append(arr, int64(id))
		}
		err = sqlx.SelectContext(ctx, repo.db, &rows, `SELECT `+courseColumns+` FROM courses WHERE id = ANY($1) ORDER BY id`, arr)
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		c, err := row.course()
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	var row courseRow
	err := sqlx.GetContext(ctx, repo.db, &row, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return course.Course{}, course.ErrNotFound
	}
	if err != nil {
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return row.course()
}

// SaveCourse inserts the course or replaces the one with the same ID.
func (repo courseRepository) SaveCourse(ctx context.Context, c course.Course) (course.Course, error) {
	row, err := toCourseRow(c)
	if err != nil {
		return course.Course{}, err
	}
	q := `INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :name, :codename, :description, :instructor, :status, :start_date, :end_date, :schedule,
			:total_sessions, :zoom, :recordings, :materials, :tasks, :exams)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, codename = EXCLUDED.codename, description = EXCLUDED.description,
			instructor = EXCLUDED.instructor, status = EXCLUDED.status, start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date, schedule = EXCLUDED.schedule, total_sessions = EXCLUDED.total_sessions,
			zoom = EXCLUDED.zoom, recordings = EXCLUDED.recordings, materials = EXCLUDED.materials,
			tasks = EXCLUDED.tasks, exams = EXCLUDED.exams`
	if _, err = sqlx.NamedExecContext(ctx, repo.db, q, row); err != nil {
		return course.Course{}, errors.Wrap(err, "saving course")
	}
	return c, nil
}
