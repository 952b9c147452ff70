package inmemdb

import (
	"context"
	"sort"

	"github.com/ifcet/aula/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) QueryCourses(_ context.Context, ids ...int) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	if len(ids) == 0 {
		for _, c := range repo.db.table {
			courses = append(courses, *c)
		}
	} else {
		seen := make(map[int]bool, len(ids))
		for _, id := range ids {
			if c, ok := repo.db.table[id]; ok && !seen[id] {
				seen[id] = true
				courses = append(courses, *c)
			}
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id int) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) SaveCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[c.ID] = &c
	return c, nil
}
