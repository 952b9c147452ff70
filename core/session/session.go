// Package session reconciles which course the Aula Virtual shows, across the
// request URL, the persisted session values and the courses a student may see.
package session

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ifcet/aula/core"
)

// Persisted keys and URL parameters.
const (
	UserKey          = "aulaUser"
	ActiveCourseKey  = "activeCourseId"
	CourseParam      = "curso"
	CourseParamAlias = "c"
)

var (
	ErrNotFound       = errors.New("session value not found")
	ErrAccessDenied   = errors.New(core.MsgCourseAccessDenied)
	ErrBadCredentials = errors.New(core.MsgBadCredentials)
	ErrLoggedOut      = errors.New("not logged in")
)

type (
	// Session is the persisted record of a logged in student.
	Session struct {
		ID        int    `json:"id"`
		Username  string `json:"username"`
		Name      string `json:"name"`
		Email     string `json:"email,omitempty"`
		CourseIDs []int  `json:"courseIds"`
		Docente   bool   `json:"docente,omitempty"`
	}

	// Store holds string values under string keys, scoped to one browser session.
	// Get returns ErrNotFound when the key is absent.
	Store interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
		Remove(ctx context.Context, key string) error
	}

	// Backend hands out a Store per session namespace.
	Backend interface {
		Scope(namespace string) Store
	}
)

// HasCourse reports whether `id` is one of the session's permitted courses.
func (s *Session) HasCourse(id int) bool {
	if s == nil {
		return false
	}
	for _, cid := range s.CourseIDs {
		if cid == id {
			return true
		}
	}
	return false
}

func (s *Session) FirstCourse() (int, bool) {
	if s == nil || len(s.CourseIDs) == 0 {
		return 0, false
	}
	return s.CourseIDs[0], true
}

func (s *Session) encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "encoding session")
	}
	return string(data), nil
}

func decodeSession(raw string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, errors.Wrap(err, "decoding session")
	}
	return &s, nil
}
