package sqlxrepos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/session"
	"github.com/ifcet/aula/core/student"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations not met: %v", err)
		}
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

var studentCols = []string{"id", "username", "full_name", "email", "password_hash", "course_ids", "is_teacher", "enrollment_date", "created_at", "updated_at"}

func TestStudentRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO students").
		WithArgs("ana", "Ana Torres", "ana@example.com", []byte("hash"), "{1,3}", false, sqlmock.AnyArg(), now, now).
		WillReturnRows(sqlmock.NewRows(studentCols).
			AddRow(7, "ana", "Ana Torres", "ana@example.com", []byte("hash"), []byte("{1,3}"), false, now, now, now))

	st, err := NewStudentRepository(db).CreateStudent(context.Background(), student.Student{
		Username:       "ana",
		FullName:       "Ana Torres",
		Email:          "ana@example.com",
		PasswordHash:   []byte("hash"),
		CourseIDs:      []int{1, 3},
		EnrollmentDate: null.TimeFrom(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, st.ID)
	assert.Equal(t, []int{1, 3}, st.CourseIDs)
	assert.True(t, st.EnrollmentDate.Valid)
}

func TestStudentRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStudentRepository(db)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM students WHERE username").
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows(studentCols).
			AddRow(7, "ana", "Ana Torres", nil, []byte("hash"), []byte("{3}"), true, nil, now, now))
	st, err := repo.GetStudentByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, student.Student{
		ID:           7,
		Username:     "ana",
		FullName:     "Ana Torres",
		PasswordHash: []byte("hash"),
		CourseIDs:    []int{3},
		Docente:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, st)

	mock.ExpectQuery("SELECT (.+) FROM students WHERE id").
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetStudentByID(context.Background(), 99)
	assert.Equal(t, student.ErrNotFound, err)
}

func TestStudentRepository_QueryAllAndUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStudentRepository(db)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM students ORDER BY id").
		WillReturnRows(sqlmock.NewRows(studentCols).
			AddRow(1, "ana", "Ana", nil, []byte("h"), []byte("{1}"), false, nil, now, now).
			AddRow(2, "bob", "Bob", "bob@example.com", []byte("h"), []byte("{}"), false, nil, now, now))
	all, err := repo.QueryAllStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob@example.com", all[1].Email)
	assert.Empty(t, all[1].CourseIDs)

	mock.ExpectQuery("UPDATE students").
		WillReturnRows(sqlmock.NewRows(studentCols).
			AddRow(1, "ana", "Ana Torres", nil, []byte("new"), []byte("{1}"), false, nil, now, now))
	st, err := repo.UpdateStudent(context.Background(), student.Student{ID: 1, Username: "ana", FullName: "Ana Torres", PasswordHash: []byte("new"), UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), st.PasswordHash)

	mock.ExpectQuery("UPDATE students").WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateStudent(context.Background(), student.Student{ID: 9})
	assert.Equal(t, student.ErrNotFound, err)
}

var courseCols = []string{"id", "name", "codename", "description", "instructor", "status", "start_date", "end_date", "schedule", "total_sessions", "zoom", "recordings", "materials", "tasks", "exams"}

func TestCourseRepository_Query(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM courses WHERE id = ANY").
		WithArgs("{3,1}").
		WillReturnRows(sqlmock.NewRows(courseCols).
			AddRow(1, "Peritaje", "", "", "", "active", "2025-03-08", "", "", 16, "", []byte(`[{"id":1,"title":"S1","url":"u"}]`), []byte(`[]`), []byte(`[{"id":1,"title":"T","status":"pending","points":20,"submissions":[]}]`), []byte(`[]`)).
			AddRow(3, "Comercial", "", "", "", "completed", "", "Finalizó.", "", nil, "", []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[{"id":1,"title":"Final","status":"graded","grade":17}]`)))

	courses, err := repo.QueryCourses(context.Background(), 3, 1)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, null.IntFrom(16), courses[0].TotalSessions)
	assert.Equal(t, []course.Recording{{ID: 1, Title: "S1", URL: "u"}}, courses[0].Recordings)
	assert.Equal(t, course.TaskPending, courses[0].Tasks[0].Status)
	assert.False(t, courses[1].TotalSessions.Valid)
	assert.Equal(t, null.IntFrom(17), courses[1].Exams[0].Grade)

	mock.ExpectQuery("SELECT (.+) FROM courses ORDER BY id").
		WillReturnRows(sqlmock.NewRows(courseCols))
	courses, err = repo.QueryCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)

	mock.ExpectQuery("SELECT (.+) FROM courses WHERE id = ").
		WithArgs(5).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetCourseByID(context.Background(), 5)
	assert.Equal(t, course.ErrNotFound, err)
}

func TestCourseRepository_Save(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(2, "Costos", "CC", "", "", "active", "2025-04-01", "", "", sqlmock.AnyArg(), "", []byte(`[]`), []byte(`[{"id":1,"title":"ABC","url":"u","type":"pptx"}]`), []byte(`[]`), []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := course.Course{ID: 2, Name: "Costos", Codename: "CC", Status: "active", StartDate: "2025-04-01",
		Materials: []course.Material{{ID: 1, Title: "ABC", URL: "u", Type: "pptx"}}}
	saved, err := NewCourseRepository(db).SaveCourse(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, c, saved)
}

func TestSessionBackend(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	store := NewSessionBackend(db, time.Hour).Scope("jti-1")
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO session_values").
		WithArgs("jti-1", session.ActiveCourseKey, "3", now.Add(time.Hour), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Set(ctx, session.ActiveCourseKey, "3"))

	mock.ExpectQuery("SELECT value FROM session_values").
		WithArgs("jti-1", session.ActiveCourseKey, now).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("3"))
	val, err := store.Get(ctx, session.ActiveCourseKey)
	require.NoError(t, err)
	assert.Equal(t, "3", val)

	mock.ExpectQuery("SELECT value FROM session_values").
		WithArgs("jti-1", session.UserKey, now).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, err = store.Get(ctx, session.UserKey)
	assert.Equal(t, session.ErrNotFound, err)

	mock.ExpectExec("DELETE FROM session_values WHERE namespace").
		WithArgs("jti-1", session.ActiveCourseKey).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Remove(ctx, session.ActiveCourseKey))

	mock.ExpectExec("DELETE FROM session_values WHERE expires_at").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))
	n, err := NewSessionBackend(db, time.Hour).PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}
