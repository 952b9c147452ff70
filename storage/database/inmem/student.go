package inmemdb

import (
	"context"
	"sort"

	"github.com/ifcet/aula/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

// CreateStudent keeps a preset ID; otherwise it assigns the next one.
func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if st.ID == 0 {
		repo.db.pkSeq++
		st.ID = repo.db.pkSeq
	} else if st.ID > repo.db.pkSeq {
		repo.db.pkSeq = st.ID
	}
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryAllStudents(context.Context) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, ok := repo.db.table[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUsername(_ context.Context, username string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.db.table {
		if st.Username == username {
			return *st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if st.PasswordHash != nil {
		orig.PasswordHash = st.PasswordHash
	}
	if st.CourseIDs != nil {
		orig.CourseIDs = st.CourseIDs
	}
	orig.FullName = st.FullName
	orig.Username = st.Username
	orig.Email = st.Email
	orig.Docente = st.Docente
	orig.UpdatedAt = st.UpdatedAt

	return *orig, nil
}
