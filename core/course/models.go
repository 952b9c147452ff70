package course

import (
	"math"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/text/language"

	"github.com/ifcet/aula/core"
)

// Course statuses
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Task statuses
const (
	TaskActive    = "active"
	TaskPending   = "pending"
	TaskSubmitted = "submitted"
	TaskGraded    = "graded"
	TaskClosed    = "closed"
)

// Exam statuses
const (
	ExamScheduled = "scheduled"
	ExamUpcoming  = "upcoming"
	ExamAvailable = "available"
	ExamCompleted = "completed"
	ExamGraded    = "graded"
)

// Material kinds
const (
	KindDocument     = "document"
	KindSpreadsheet  = "spreadsheet"
	KindPresentation = "presentation"
	KindFolder       = "folder"
)

func init() {
	core.RegisterMessages(language.Spanish, map[string]string{
		"In progress":        "En curso",
		"Finished":           "Finalizado",
		"Active":             "Activo",
		"Pending":            "Pendiente",
		"Submitted":          "Enviado",
		"Graded":             "Calificado",
		"Closed":             "Cerrado",
		"Scheduled":          "Programado",
		"Available":          "Disponible",
		"Completed":          "Completado",
		"Overdue by %d days": "Vencido hace %d días",
		"Due today":          "Vence hoy",
		"%d days left":       "%d días restantes",
		"Exam passed":        "Examen pasado",
		"Exam today":         "Examen hoy",
		"In %d days":         "En %d días",
	})
}

type (
	Recording struct {
		ID          int    `json:"id" yaml:"id"`
		Title       string `json:"title" yaml:"title"`
		URL         string `json:"url" yaml:"url"`
		Duration    string `json:"duration,omitempty" yaml:"duration"`
		Date        string `json:"date,omitempty" yaml:"date"`
		Description string `json:"description,omitempty" yaml:"description"`
	}

	Material struct {
		ID         int    `json:"id" yaml:"id"`
		Title      string `json:"title" yaml:"title"`
		URL        string `json:"url" yaml:"url"`
		Type       string `json:"type,omitempty" yaml:"type"`
		Size       string `json:"size,omitempty" yaml:"size"`
		UploadDate string `json:"uploadDate,omitempty" yaml:"uploadDate"`
	}

	Task struct {
		ID           int           `json:"id" yaml:"id"`
		Title        string        `json:"title" yaml:"title"`
		Description  string        `json:"description,omitempty" yaml:"description"`
		DueDate      string        `json:"dueDate,omitempty" yaml:"dueDate"`
		Points       int           `json:"points" yaml:"points"`
		Status       string        `json:"status" yaml:"status"`
		Submissions  []interface{} `json:"submissions" yaml:"submissions"`
		Instructions string        `json:"instructions,omitempty" yaml:"instructions"`
	}

	Exam struct {
		ID          int      `json:"id" yaml:"id"`
		Title       string   `json:"title" yaml:"title"`
		Description string   `json:"description,omitempty" yaml:"description"`
		Date        string   `json:"date,omitempty" yaml:"date"`
		Duration    int      `json:"duration" yaml:"duration"` // minutes
		Points      int      `json:"points" yaml:"points"`
		Status      string   `json:"status" yaml:"status"`
		Attempts    int      `json:"attempts" yaml:"attempts"`
		TimeLimit   bool     `json:"timeLimit" yaml:"timeLimit"`
		Questions   int      `json:"questions" yaml:"questions"`
		Grade       null.Int `json:"grade" yaml:"-"`
	}

	Course struct {
		ID            int         `json:"id" yaml:"id"`
		Name          string      `json:"name" yaml:"name"`
		Codename      string      `json:"codename,omitempty" yaml:"codename"`
		Description   string      `json:"description,omitempty" yaml:"description"`
		Instructor    string      `json:"instructor,omitempty" yaml:"instructor"`
		Status        string      `json:"status" yaml:"status"`
		StartDate     string      `json:"startDate,omitempty" yaml:"startDate"`
		EndDate       string      `json:"endDate,omitempty" yaml:"endDate"`
		Schedule      string      `json:"schedule,omitempty" yaml:"schedule"`
		TotalSessions null.Int    `json:"totalSessions" yaml:"-"`
		Zoom          string      `json:"zoom,omitempty" yaml:"zoom"`
		Recordings    []Recording `json:"recordings" yaml:"recordings"`
		Materials     []Material  `json:"materials" yaml:"materials"`
		Tasks         []Task      `json:"tasks" yaml:"tasks"`
		Exams         []Exam      `json:"exams" yaml:"exams"`
	}
)

// DaysUntil returns the whole days from now until `date`, rounded up.
// It is invalid when the date cannot be parsed, as with free text like "Finalizó.".
func DaysUntil(date string, now time.Time) null.Int {
	t, ok := core.ParseTime(date)
	if !ok {
		return null.Int{}
	}
	days := math.Ceil(t.Sub(now).Hours() / 24)
	return null.IntFrom(int(days))
}

func (c Course) StatusLabel() string {
	switch c.Status {
	case StatusActive:
		return core.T("In progress")
	case StatusCompleted:
		return core.T("Finished")
	default:
		return core.T("Active")
	}
}

func (t Task) Pending() bool { return t.Status == TaskActive || t.Status == TaskPending }

func (t Task) StatusLabel() string {
	switch t.Status {
	case TaskSubmitted:
		return core.T("Submitted")
	case TaskGraded:
		return core.T("Graded")
	case TaskClosed:
		return core.T("Closed")
	default:
		return core.T("Pending")
	}
}

// DueLabel describes the time left before the due date; empty once graded or closed.
func (t Task) DueLabel(now time.Time) string {
	days := DaysUntil(t.DueDate, now)
	if !days.Valid || t.Status == TaskGraded || t.Status == TaskClosed {
		return ""
	}
	switch {
	case days.Int < 0:
		return core.T("Overdue by %d days", -days.Int)
	case days.Int == 0:
		return core.T("Due today")
	default:
		return core.T("%d days left", days.Int)
	}
}

func (e Exam) Upcoming() bool { return e.Status == ExamScheduled || e.Status == ExamUpcoming }

func (e Exam) StatusLabel() string {
	switch e.Status {
	case ExamAvailable:
		return core.T("Available")
	case ExamCompleted:
		return core.T("Completed")
	case ExamGraded:
		return core.T("Graded")
	default:
		return core.T("Scheduled")
	}
}

// CountdownLabel describes the time left before the exam; empty once taken.
func (e Exam) CountdownLabel(now time.Time) string {
	days := DaysUntil(e.Date, now)
	if !days.Valid || e.Status == ExamCompleted || e.Status == ExamGraded {
		return ""
	}
	switch {
	case days.Int < 0:
		return core.T("Exam passed")
	case days.Int == 0:
		return core.T("Exam today")
	default:
		return core.T("In %d days", days.Int)
	}
}

// Kind groups the material type into the families the portal shows icons for.
func (m Material) Kind() string {
	switch strings.ToLower(m.Type) {
	case "excel", "xlsx":
		return KindSpreadsheet
	case "presentation", "ppt", "pptx":
		return KindPresentation
	case "drive", "folder":
		return KindFolder
	default:
		return KindDocument
	}
}
