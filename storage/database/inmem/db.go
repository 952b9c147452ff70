package inmemdb

import (
	"sync"

	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/student"
)

type (
	DB struct {
		student *studentTable
		course  *courseTable
	}

	studentTable struct {
		mutex sync.RWMutex
		pkSeq int
		table map[int]*student.Student
	}

	courseTable struct {
		mutex sync.RWMutex
		table map[int]*course.Course
	}
)

func Open() *DB {
	return &DB{
		student: &studentTable{table: make(map[int]*student.Student)},
		course:  &courseTable{table: make(map[int]*course.Course)},
	}
}
