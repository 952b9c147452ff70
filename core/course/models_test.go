package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		date string
		want null.Int
	}{
		{name: "same instant", date: "2025-03-10T12:00:00", want: null.IntFrom(0)},
		{name: "later today rounds up", date: "2025-03-10T18:00", want: null.IntFrom(1)},
		{name: "tomorrow", date: "2025-03-11 12:00", want: null.IntFrom(1)},
		{name: "date only", date: "2025-03-15", want: null.IntFrom(5)},
		{name: "past", date: "2025-03-07T12:00:00", want: null.IntFrom(-3)},
		{name: "free text", date: "Finalizó.", want: null.Int{}},
		{name: "empty", date: "", want: null.Int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.date, now))
		})
	}
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "En curso", Course{Status: StatusActive}.StatusLabel())
	assert.Equal(t, "Finalizado", Course{Status: StatusCompleted}.StatusLabel())
	assert.Equal(t, "Activo", Course{Status: "upcoming"}.StatusLabel())

	for status, want := range map[string]string{
		TaskActive:    "Pendiente",
		TaskPending:   "Pendiente",
		TaskSubmitted: "Enviado",
		TaskGraded:    "Calificado",
		TaskClosed:    "Cerrado",
		"unknown":     "Pendiente",
	} {
		assert.Equal(t, want, Task{Status: status}.StatusLabel(), status)
	}

	for status, want := range map[string]string{
		ExamScheduled: "Programado",
		ExamUpcoming:  "Programado",
		ExamAvailable: "Disponible",
		ExamCompleted: "Completado",
		ExamGraded:    "Calificado",
		"":            "Programado",
	} {
		assert.Equal(t, want, Exam{Status: status}.StatusLabel(), status)
	}
}

func TestTask_DueLabel(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "Vencido hace 2 días", Task{Status: TaskPending, DueDate: "2025-03-08T12:00:00"}.DueLabel(now))
	assert.Equal(t, "Vence hoy", Task{Status: TaskPending, DueDate: "2025-03-10T12:00:00"}.DueLabel(now))
	assert.Equal(t, "3 días restantes", Task{Status: TaskActive, DueDate: "2025-03-13T12:00:00"}.DueLabel(now))
	assert.Empty(t, Task{Status: TaskGraded, DueDate: "2025-03-13T12:00:00"}.DueLabel(now))
	assert.Empty(t, Task{Status: TaskPending, DueDate: "pronto"}.DueLabel(now))
}

func TestExam_CountdownLabel(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "Examen pasado", Exam{Status: ExamScheduled, Date: "2025-03-01"}.CountdownLabel(now))
	assert.Equal(t, "Examen hoy", Exam{Status: ExamAvailable, Date: "2025-03-10T12:00:00"}.CountdownLabel(now))
	assert.Equal(t, "En 7 días", Exam{Status: ExamUpcoming, Date: "2025-03-17T12:00:00"}.CountdownLabel(now))
	assert.Empty(t, Exam{Status: ExamCompleted, Date: "2025-03-17"}.CountdownLabel(now))
}

func TestMaterial_Kind(t *testing.T) {
	for typ, want := range map[string]string{
		"PDF":    KindDocument,
		"xlsx":   KindSpreadsheet,
		"Excel":  KindSpreadsheet,
		"pptx":   KindPresentation,
		"drive":  KindFolder,
		"folder": KindFolder,
		"":       KindDocument,
	} {
		assert.Equal(t, want, Material{Type: typ}.Kind(), typ)
	}
}

func TestSummarize(t *testing.T) {
	c := Course{
		ID:         7,
		Status:     StatusActive,
		Recordings: []Recording{{ID: 1}, {ID: 2}},
		Materials:  []Material{{ID: 1}},
		Tasks: []Task{
			{ID: 1, Status: TaskActive},
			{ID: 2, Status: TaskPending},
			{ID: 3, Status: TaskSubmitted},
		},
		Exams: []Exam{
			{ID: 1, Status: ExamScheduled},
			{ID: 2, Status: ExamAvailable},
			{ID: 3, Status: ExamUpcoming},
			{ID: 4, Status: ExamGraded},
		},
	}
	assert.Equal(t, Summary{
		CourseID:      7,
		Status:        StatusActive,
		StatusLabel:   "En curso",
		Recordings:    2,
		Materials:     1,
		PendingTasks:  2,
		UpcomingExams: 2,
	}, Summarize(c))

	assert.Equal(t, Summary{StatusLabel: "Activo"}, Summarize(Course{}))
}
