package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ifcet/aula/core/student"
)

const studentColumns = `id, username, full_name, email, password_hash, course_ids, is_teacher, enrollment_date, created_at, updated_at`

type (
	studentRow struct {
		ID             int           `db:"id"`
		Username       string        `db:"username"`
		FullName       string        `db:"full_name"`
		Email          null.String   `db:"email"`
		PasswordHash   []byte        `db:"password_hash"`
		CourseIDs      pq.Int64Array `db:"course_ids"`
		IsTeacher      bool          `db:"is_teacher"`
		EnrollmentDate null.Time     `db:"enrollment_date"`
		CreatedAt      time.Time     `db:"created_at"`
		UpdatedAt      time.Time     `db:"updated_at"`
	}

	studentRepository struct {
		db sqlx.ExtContext
	}
)

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db sqlx.ExtContext) *studentRepository {
	return &studentRepository{db: db}
}

func toStudentRow(st student.Student) studentRow {
	ids := make(pq.Int64Array, 0, len(st.CourseIDs))
	for _, id := range st.CourseIDs {
		ids = append(ids, int64(id))
	}
	return studentRow{
		ID:             st.ID,
		Username:       st.Username,
		FullName:       st.FullName,
		Email:          null.NewString(st.Email, st.Email != ""),
		PasswordHash:   st.PasswordHash,
		CourseIDs:      ids,
		IsTeacher:      st.Docente,
		EnrollmentDate: st.EnrollmentDate,
		CreatedAt:      st.CreatedAt.UTC(),
		UpdatedAt:      st.UpdatedAt.UTC(),
	}
}

func (row studentRow) student() student.Student {
	ids := make([]int, 0, len(row.CourseIDs))
	for _, id := range row.CourseIDs {
		ids = append(ids, int(id))
	}
	return student.Student{
		ID:             row.ID,
		Username:       row.Username,
		FullName:       row.FullName,
		Email:          row.Email.String,
		PasswordHash:   row.PasswordHash,
		CourseIDs:      ids,
		Docente:        row.IsTeacher,
		EnrollmentDate: row.EnrollmentDate,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// CreateStudent inserts the student; the database assigns its ID.
func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	row := toStudentRow(st)
	q := `INSERT INTO students (username, full_name, email, password_hash, course_ids, is_teacher, enrollment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + studentColumns

	var created studentRow
	err := sqlx.GetContext(ctx, repo.db, &created, q,
		row.Username, row.FullName, row.Email, row.PasswordHash, row.CourseIDs,
		row.IsTeacher, row.EnrollmentDate, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return created.student(), nil
}

func (repo studentRepository) get(ctx context.Context, where string, arg interface{}) (student.Student, error) {
	var row studentRow
	err := sqlx.GetContext(ctx, repo.db, &row, `SELECT `+studentColumns+` FROM students WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return row.student(), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	return repo.get(ctx, "id = $1", id)
}

func (repo studentRepository) GetStudentByUsername(ctx context.Context, username string) (student.Student, error) {
	return repo.get(ctx, "username = $1", username)
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, `SELECT `+studentColumns+` FROM students ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

// UpdateStudent saves every field; a nil password hash keeps the stored one.
func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	row := toStudentRow(st)
	q := `UPDATE students
		SET username = $2, full_name = $3, email = $4, password_hash = COALESCE($5, password_hash),
			course_ids = $6, is_teacher = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + studentColumns

	var updated studentRow
	err := sqlx.GetContext(ctx, repo.db, &updated, q,
		row.ID, row.Username, row.FullName, row.Email, row.PasswordHash, row.CourseIDs, row.IsTeacher, row.UpdatedAt)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return updated.student(), nil
}
